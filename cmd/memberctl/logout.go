package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/memberauth"
	"github.com/spf13/cobra"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		Long: `Sign out. The local session is always cleared; a failed server-side
logout is reported as a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			who := describeAccount(s.store.Account())
			err = s.store.Logout(ctx)

			var remote *memberauth.RemoteLogoutError
			if errors.As(err, &remote) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", remote.Err)
				err = withoutRemote(err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed out %s\n", who)
			return nil
		},
	}
}

// withoutRemote strips the remote logout failure from err, keeping any local
// cache error joined to it.
func withoutRemote(err error) error {
	if _, ok := err.(*memberauth.RemoteLogoutError); ok {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	var rest []error
	for _, e := range joined.Unwrap() {
		if _, remote := e.(*memberauth.RemoteLogoutError); !remote {
			rest = append(rest, e)
		}
	}
	return errors.Join(rest...)
}
