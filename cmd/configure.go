package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nexttools/internal/envsync"
	"nexttools/internal/failfast"
)

var configureOverrides []string

var configureCmd = &cobra.Command{
	Use:   "configure [source] [target]",
	Short: "Sync environment variables from the config-vars service to an app",
	Long: `Downloads the variables stored for [source] in the config-vars service, applies
--overrides and makes [target]'s config vars match. Keys the target has but the
source does not are removed.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringSliceVarP(&configureOverrides, "overrides", "o", nil, "KEY=value pairs applied on top of the source")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(c *cobra.Command, args []string) error {
	source, err := appArg(args)
	if err != nil {
		return err
	}
	target := source
	if len(args) > 1 {
		target = args[1]
	}

	overrides, err := envsync.ParseOverrides(configureOverrides)
	if err != nil {
		return failfast.Usage(err)
	}
	key, err := envsync.LoadKey(cfg.ConfigVars.Key, cfg.ConfigVars.KeyFile)
	if err != nil {
		return err
	}
	token, err := resolveToken(c.Context())
	if err != nil {
		return err
	}
	pf, err := newPlatform(token)
	if err != nil {
		return err
	}

	changed, err := envsync.Sync(c.Context(), envsync.Source{BaseURL: cfg.ConfigVars.URL, Key: key}, pf, source, target, overrides)
	if err != nil {
		return fmt.Errorf("configure %s: %w", target, err)
	}
	if len(changed) == 0 {
		infoColor.Fprintf(c.OutOrStdout(), "%s is already up to date\n", target)
		return nil
	}
	successColor.Fprintf(c.OutOrStdout(), "✓ %s updated: %s\n", target, strings.Join(changed, ", "))
	return nil
}
