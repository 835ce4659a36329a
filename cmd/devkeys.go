package cmd

import (
	"github.com/spf13/cobra"

	"nexttools/internal/devkeys"
	"nexttools/internal/envsync"
)

var devKeysUpdate bool

var devKeysCmd = &cobra.Command{
	Use:   "download-development-keys",
	Short: "Fetch the shared development keys into ~/" + devkeys.FileName,
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		dest, err := devkeys.DefaultPath()
		if err != nil {
			return err
		}
		key, err := envsync.LoadKey(cfg.ConfigVars.Key, cfg.ConfigVars.KeyFile)
		if err != nil {
			return err
		}
		_, err = devkeys.Downloader{BaseURL: cfg.ConfigVars.URL, Key: key}.Download(c.Context(), dest, devKeysUpdate)
		return err
	},
}

func init() {
	devKeysCmd.Flags().BoolVar(&devKeysUpdate, "update", false, "overwrite an existing keys file")
	rootCmd.AddCommand(devKeysCmd)
}
