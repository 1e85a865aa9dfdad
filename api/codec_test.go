package api

import (
	"errors"
	"testing"

	"github.com/MrEthical07/memberauth"
)

func TestAccountCodecRoundTrip(t *testing.T) {
	in := &memberauth.Account{ID: 7, Email: "a@b.com", Name: "Ada", AvatarURL: "https://img/7.png"}
	data, err := EncodeAccount(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeAccount(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestDecodeAccountAcceptsBareMember(t *testing.T) {
	out, err := DecodeAccount([]byte(`{"id":1,"email":"a@b.com"}`))
	if err != nil {
		t.Fatalf("decode bare member: %v", err)
	}
	if out.ID != 1 || out.Email != "a@b.com" {
		t.Fatalf("unexpected account %+v", out)
	}
}

func TestDecodeAccountRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"not json":       `not-json`,
		"array":          `[1,2]`,
		"truncated":      `{"id":1`,
		"missing id":     `{"email":"a@b.com"}`,
		"zero id":        `{"v":1,"member":{"id":0}}`,
		"future version": `{"v":9,"member":{"id":1}}`,
		"missing member": `{"v":1}`,
		"wrong id type":  `{"id":"one"}`,
		"null":           `null`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeAccount([]byte(raw)); !errors.Is(err, ErrMalformedAccount) {
				t.Fatalf("expected ErrMalformedAccount, got %v", err)
			}
		})
	}
}

func TestEncodeAccountRequiresID(t *testing.T) {
	if _, err := EncodeAccount(&memberauth.Account{Email: "a@b.com"}); err == nil {
		t.Fatal("expected error for account without id")
	}
	if _, err := EncodeAccount(nil); err == nil {
		t.Fatal("expected error for nil account")
	}
}

// FuzzDecodeAccount checks the decoder never panics and never yields an
// account without an id.
func FuzzDecodeAccount(f *testing.F) {
	seed, _ := EncodeAccount(&memberauth.Account{ID: 1, Email: "a@b.com"})
	f.Add(seed)
	f.Add([]byte(`{"id":1}`))
	f.Add([]byte{})
	f.Add([]byte(`{"v":1,"member":null}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		out, err := DecodeAccount(data)
		if err == nil && (out == nil || out.ID == 0) {
			t.Fatalf("decoder accepted account without id: %q", data)
		}
	})
}
