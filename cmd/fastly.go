package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"nexttools/internal/cdn"
	"nexttools/internal/failfast"
)

var purgeSoft bool

var purgeCmd = &cobra.Command{
	Use:   "purge <url...>",
	Short: "Purge urls from the Fastly cache",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return failfast.Usagef("please provide at least one url to purge")
		}
		client, err := fastlyClient()
		if err != nil {
			return err
		}
		if err := client.PurgeAll(c.Context(), args, purgeSoft); err != nil {
			return err
		}
		successColor.Fprintf(c.OutOrStdout(), "✓ purged %d url(s)\n", len(args))
		return nil
	},
}

var vclOpts struct {
	service string
	main    string
	vars    []string
}

var deployVCLCmd = &cobra.Command{
	Use:   "deploy-vcl <folder>",
	Short: "Upload a folder of VCL to a Fastly service and activate it",
	Long: `Clones the active version of the service, replaces its VCL with every *.vcl file
in <folder> and activates the new version once it validates.

Each name passed in --vars is substituted for ${NAME} in the files, taking its
value from the environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		dir, err := requireArg(args, "a folder of vcl files")
		if err != nil {
			return err
		}
		service := vclOpts.service
		if service == "" {
			service = cfg.Fastly.ServiceID
		}
		if service == "" {
			return failfast.Usage(cdn.ErrMissingService)
		}

		values := make(map[string]string, len(vclOpts.vars))
		for _, name := range vclOpts.vars {
			if v, ok := os.LookupEnv(name); ok {
				values[name] = v
			}
		}
		files, err := cdn.LoadVCL(dir, vclOpts.vars, values)
		if err != nil {
			return err
		}

		client, err := fastlyClient()
		if err != nil {
			return err
		}
		version, err := client.DeployVCL(c.Context(), service, files, vclOpts.main)
		if err != nil {
			return err
		}
		successColor.Fprintf(c.OutOrStdout(), "✓ version %d of %s is active\n", version, service)
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeSoft, "soft", false, "mark content stale instead of removing it")
	f := deployVCLCmd.Flags()
	f.StringVar(&vclOpts.service, "service", "", "fastly service id (default from config)")
	f.StringVar(&vclOpts.main, "main", cdn.DefaultMainVCL, "file set as the main vcl")
	f.StringSliceVar(&vclOpts.vars, "vars", nil, "environment variables substituted into the vcl")
	rootCmd.AddCommand(purgeCmd, deployVCLCmd)
}

func fastlyClient() (*cdn.Client, error) {
	return cdn.New(cfg.Fastly.APIURL, cfg.Fastly.Key, cdn.WithPurgeRate(cfg.Fastly.PurgeRate))
}
