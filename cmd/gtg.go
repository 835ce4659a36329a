package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"nexttools/internal/failfast"
	"nexttools/internal/gtg"
)

type gtgFlags struct {
	timeoutMs  int
	intervalMs int
}

func init() {
	rootCmd.AddCommand(NewVerifyCommand("gtg <app>"))
}

// NewVerifyCommand builds the gtg poller. It is mounted as `nexttools gtg`
// and is also the whole of the verify-deploy binary.
func NewVerifyCommand(use string) *cobra.Command {
	var flags gtgFlags
	c := &cobra.Command{
		Use:   use,
		Short: "Wait until an app's /__gtg endpoint answers 200",
		Long: `Polls https://<app>.<host-suffix>/__gtg until it returns 200 or the timeout passes.

Non-200 answers and connection errors during startup are retried. The command
exits 0 when the app is good to go, 1 when the timeout passes and 2 on bad input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := checkGTGFlags(c, "timeout", "interval"); err != nil {
				return err
			}
			app := ""
			if len(args) == 1 {
				app = args[0]
			}
			return runVerify(c, app, flags)
		},
	}
	c.Flags().IntVar(&flags.timeoutMs, "timeout", 0, "overall budget in milliseconds (default from config, 60000)")
	c.Flags().IntVar(&flags.intervalMs, "interval", 0, "delay between attempts in milliseconds (default from config, 2000)")
	return c
}

// checkGTGFlags rejects a budget flag given explicitly as zero or less;
// leaving a flag out keeps the configured value.
func checkGTGFlags(c *cobra.Command, names ...string) error {
	for _, name := range names {
		if !c.Flags().Changed(name) {
			continue
		}
		if ms, err := c.Flags().GetInt(name); err == nil && ms <= 0 {
			return failfast.Usagef("--%s must be a positive number of milliseconds, got %d", name, ms)
		}
	}
	return nil
}

func gtgTargetOptions(flags gtgFlags) gtg.TargetOptions {
	opts := gtg.TargetOptions{
		Timeout:    cfg.GTG.Timeout,
		Interval:   cfg.GTG.Interval,
		HostSuffix: cfg.GTG.HostSuffix,
		Scheme:     cfg.GTG.Scheme,
	}
	if flags.timeoutMs != 0 {
		opts.Timeout = time.Duration(flags.timeoutMs) * time.Millisecond
	}
	if flags.intervalMs != 0 {
		opts.Interval = time.Duration(flags.intervalMs) * time.Millisecond
	}
	return opts
}

func newVerifier() *gtg.Verifier {
	return gtg.NewVerifier(gtg.WithAttemptTimeout(cfg.GTG.AttemptTimeout))
}

func runVerify(c *cobra.Command, app string, flags gtgFlags) error {
	target, err := gtg.NewTarget(app, gtgTargetOptions(flags))
	if err != nil {
		return err
	}

	out, err := newVerifier().Verify(c.Context(), target)
	if err != nil {
		return err
	}
	successColor.Fprintf(c.OutOrStdout(), "✓ %s is good to go (%d attempt(s), %v)\n",
		target.App(), out.Attempts, out.Elapsed.Round(time.Millisecond))
	return nil
}

// requireArg returns args[0] or a usage error naming what is missing.
func requireArg(args []string, what string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", failfast.Usagef("please provide %s", what)
	}
	return args[0], nil
}

// NewVerifyDeployCommand is the root of the standalone verify-deploy
// binary: the gtg poller with the global flags and config loading.
func NewVerifyDeployCommand() *cobra.Command {
	c := NewVerifyCommand("verify-deploy <applicationId>")
	c.SilenceUsage = true
	c.SilenceErrors = true
	c.PersistentPreRunE = loadConfig
	addGlobalFlags(c)
	return c
}

// Run executes c with args and returns the process exit code.
func Run(c *cobra.Command, args []string) int {
	return run(c, args)
}
