package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nexttools/internal/changelog"
)

var logOpts struct {
	summary     string
	environment string
	name        string
	gateway     string
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Open and close change requests in Konstructor",
}

var logOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Log a release and print the change request id",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		id, err := konstructor().Open(c.Context(), changelog.OpenRequest{
			Summary:     logOpts.summary,
			Environment: logOpts.environment,
			Name:        logOpts.name,
			Gateway:     gatewayFlag(),
		})
		if err != nil {
			return fmt.Errorf("opening change request: %w", err)
		}
		fmt.Fprintln(c.OutOrStdout(), id)
		return nil
	},
}

var logCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a change request as implemented",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		id, err := requireArg(args, "a change request id")
		if err != nil {
			return err
		}
		return konstructor().Close(c.Context(), id, gatewayFlag())
	},
}

func init() {
	f := logOpenCmd.Flags()
	f.StringVar(&logOpts.summary, "summary", "", "summary of the change")
	f.StringVar(&logOpts.environment, "environment", "Production", "environment being changed")
	f.StringVar(&logOpts.name, "name", "", "service id in Konstructor")
	_ = logOpenCmd.MarkFlagRequired("summary")
	_ = logOpenCmd.MarkFlagRequired("name")

	logCmd.PersistentFlags().StringVar(&logOpts.gateway, "gateway", "", "mashery, konstructor or internal (default from config)")
	logCmd.AddCommand(logOpenCmd, logCloseCmd)
	rootCmd.AddCommand(logCmd)
}

func gatewayFlag() string {
	if logOpts.gateway != "" {
		return logOpts.gateway
	}
	return cfg.Konstructor.Gateway
}

func konstructor() *changelog.Client {
	return &changelog.Client{
		APIKey:  cfg.Konstructor.APIKey,
		Owner:   cfg.Konstructor.Owner,
		Channel: cfg.Konstructor.Channel,
	}
}
