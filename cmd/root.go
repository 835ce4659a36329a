package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nexttools/internal/config"
	"nexttools/internal/failfast"
	"nexttools/internal/logger"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is loaded once per invocation by loadConfig.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nexttools",
	Short: "Deploy and operate Next apps on Heroku, Fastly and S3",
	Long: `nexttools wraps the steps of shipping a Next application:

  deploy                     build, release and wait for the app to be good to go
  gtg                        poll an app's /__gtg endpoint until it answers 200
  configure                  sync environment variables from the config-vars service
  deploy-static              upload static files to S3
  deploy-hashed-assets       upload hashed asset bundles to S3
  purge / deploy-vcl         Fastly cache purges and VCL deploys
  log open / log close       change requests in Konstructor`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and exits with the mapped status code.
func Execute() {
	os.Exit(run(rootCmd, os.Args[1:]))
}

func run(c *cobra.Command, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.SetArgs(args)
	err := c.ExecuteContext(ctx)
	return failfast.Report(c.ErrOrStderr(), err)
}

func init() {
	addGlobalFlags(rootCmd)
}

func addGlobalFlags(c *cobra.Command) {
	c.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./"+config.ConfigFile+")")
	c.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	c.PersistentFlags().StringVar(&logFormat, "log-format", "", "console or json (overrides config)")
}

func loadConfig(c *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return failfast.Usage(err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	lvl, err := logger.ParseLevel(loaded.Log.Level)
	if err != nil {
		return failfast.Usage(err)
	}
	logger.Configure(c.ErrOrStderr(), lvl, loaded.Log.Format)
	cfg = loaded
	return nil
}
