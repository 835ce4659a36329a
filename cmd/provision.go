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

var provisionOrg string

var provisionCmd = &cobra.Command{
	Use:   "provision <app>",
	Short: "Create a Heroku app in the configured region",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		app, err := requireArg(args, "an app name")
		if err != nil {
			return err
		}
		pf, err := platformFor(c)
		if err != nil {
			return err
		}
		org := provisionOrg
		if org == "" {
			org = cfg.Heroku.Organization
		}
		created, err := pf.CreateApp(c.Context(), platform.AppCreate{Name: app, Region: cfg.Heroku.Region, Team: org})
		if err != nil {
			return fmt.Errorf("provisioning %s: %w", app, err)
		}
		successColor.Fprintf(c.OutOrStdout(), "✓ created %s (%s)\n", created.Name, created.WebURL)
		return nil
	},
}

var destroyYes bool

var destroyCmd = &cobra.Command{
	Use:   "destroy <app>",
	Short: "Delete a Heroku app",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		app, err := requireArg(args, "an app name")
		if err != nil {
			return err
		}
		if !destroyYes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return failfast.Usagef("refusing to destroy %s without --yes", app)
			}
			if !confirm(c, fmt.Sprintf("Really destroy %s? Type the app name to confirm: ", app), app) {
				warnColor.Fprintln(c.OutOrStdout(), "aborted")
				return nil
			}
		}
		pf, err := platformFor(c)
		if err != nil {
			return err
		}
		if err := pf.DeleteApp(c.Context(), app); err != nil {
			if platform.IsNotFound(err) {
				warnColor.Fprintf(c.OutOrStdout(), "%s does not exist\n", app)
				return nil
			}
			return fmt.Errorf("destroying %s: %w", app, err)
		}
		successColor.Fprintf(c.OutOrStdout(), "✓ destroyed %s\n", app)
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionOrg, "organization", "", "heroku team that owns the app")
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(provisionCmd, destroyCmd)
}

func platformFor(c *cobra.Command) (*platform.Client, error) {
	token, err := resolveToken(c.Context())
	if err != nil {
		return nil, err
	}
	return newPlatform(token)
}

// confirm reads one line from the command's stdin and compares it to want.
func confirm(c *cobra.Command, prompt, want string) bool {
	fmt.Fprint(c.OutOrStdout(), prompt)
	line, err := bufio.NewReader(c.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == want
}
