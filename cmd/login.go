package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nexttools/internal/failfast"
	"nexttools/internal/platform"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Heroku token",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		if err := platform.ForgetToken(); err != nil {
			return err
		}
		successColor.Fprintln(c.OutOrStdout(), "✓ heroku token removed")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Heroku API token in the OS keyring",
	Long: `Reads a Heroku API token from stdin and stores it in the OS keyring, where
deploy, configure, provision and destroy look for it before asking the heroku CLI.`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		token, err := readToken(c)
		if err != nil {
			return err
		}
		if strings.TrimSpace(token) == "" {
			return failfast.Usage(platform.ErrMissingToken)
		}
		if err := platform.StoreToken(token); err != nil {
			return err
		}
		successColor.Fprintln(c.OutOrStdout(), "✓ heroku token stored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func readToken(c *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if c.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		fmt.Fprint(c.OutOrStdout(), "Heroku API token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(c.OutOrStdout())
		return string(raw), err
	}
	line, err := bufio.NewReader(c.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
