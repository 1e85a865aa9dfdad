package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrEthical07/memberauth"
)

const accountFormatVersionCurrent = 1

// ErrMalformedAccount is returned when the persisted account cannot be decoded
// or carries no member id.
var ErrMalformedAccount = errors.New("malformed persisted account")

type accountEnvelope struct {
	Version int                 `json:"v"`
	Member  *memberauth.Account `json:"member"`
}

// EncodeAccount serializes a into the versioned cache format.
func EncodeAccount(a *memberauth.Account) ([]byte, error) {
	if a == nil {
		return nil, errors.New("nil account")
	}
	if a.ID == 0 {
		return nil, errors.New("account id required")
	}
	return json.Marshal(accountEnvelope{Version: accountFormatVersionCurrent, Member: a})
}

// DecodeAccount parses the versioned cache format. A bare member object without
// envelope is accepted as written by older clients.
func DecodeAccount(data []byte) (*memberauth.Account, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedAccount
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAccount, err)
	}

	var account memberauth.Account
	if _, enveloped := fields["v"]; enveloped {
		var env accountEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedAccount, err)
		}
		if env.Version != accountFormatVersionCurrent {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedAccount, env.Version)
		}
		if env.Member == nil {
			return nil, fmt.Errorf("%w: missing member", ErrMalformedAccount)
		}
		account = *env.Member
	} else if err := json.Unmarshal(trimmed, &account); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAccount, err)
	}

	if account.ID == 0 {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedAccount)
	}
	return &account, nil
}
