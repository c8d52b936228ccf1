package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yungbote/pulseboard-backend/internal/client/config"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		email    string
		timezone string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Long: `Sign in with email and password. The password is read from the terminal
without echo. The access token is written to ~/.dashctl.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())

			if email == "" {
				fmt.Fprint(out, "Email: ")
				line, _ := in.ReadString('\n')
				email = strings.TrimSpace(line)
			}
			fmt.Fprint(out, "Password: ")
			password, err := readSecret(in)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()
			sess, err := s.client.Login(ctx, validation.Credentials{Email: email, Password: password})
			if err != nil {
				return describe(err)
			}

			cfg := s.cfg
			cfg.Token = sess.AccessToken
			if timezone != "" {
				cfg.Timezone = timezone
			} else if cfg.Timezone == "" && sess.User != nil {
				cfg.Timezone = sess.User.Timezone
			}
			if _, err := cfg.Location(); err != nil {
				return err
			}
			if err := config.Save(s.path, cfg); err != nil {
				return err
			}
			name := email
			if sess.User != nil && sess.User.FirstName != "" {
				name = sess.User.FirstName
			}
			fmt.Fprintf(out, "Logged in as %s; token valid until %s\n", name, sess.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for calendar views (default: the account's)")
	return cmd
}

func readSecret(fallback *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := fallback.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}
