package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MrEthical07/memberauth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in and persist the session",
		Long: `Sign in with EMAIL. The password is prompted for without echo when stdin
is a terminal, otherwise the first line of stdin is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Login(ctx, args[0], password); err != nil {
				if errors.Is(err, memberauth.ErrInvalidCredentials) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", describeAccount(s.store.Account()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin even on a terminal")
	return cmd
}

func readPassword(in io.Reader, prompt io.Writer, forceStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !forceStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func describeAccount(a *memberauth.Account) string {
	if a == nil {
		return "nobody"
	}
	switch {
	case a.Name != "" && a.Email != "":
		return fmt.Sprintf("%s <%s> (id %d)", a.Name, a.Email, a.ID)
	case a.Email != "":
		return fmt.Sprintf("%s (id %d)", a.Email, a.ID)
	default:
		return fmt.Sprintf("member %d", a.ID)
	}
}
