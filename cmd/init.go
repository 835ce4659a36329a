package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"nexttools/internal/config"
	"nexttools/internal/failfast"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample " + config.ConfigFile + " with every default",
	Args:  cobra.NoArgs,
	// no config exists yet, so skip loading one
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(c *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = config.ConfigFile
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return failfast.Usagef("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		successColor.Fprintf(c.OutOrStdout(), "✓ wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
