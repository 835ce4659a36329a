package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nexttools/internal/deploy"
	"nexttools/internal/git"
	"nexttools/internal/platform"
)

var deployOpts struct {
	app               string
	docker            bool
	dockerImage       string
	skipEnablePreboot bool
	skipGTG           bool
	gtg               gtgFlags
}

var deployCmd = &cobra.Command{
	Use:   "deploy [app]",
	Short: "Build, release and verify an app on Heroku",
	Long: `Runs the full deploy of the project in the current directory:

- resolves the Heroku token and the git commit
- writes public/__about.json
- uploads the source (or writes a Dockerfile with --docker) while enabling preboot
- creates the build / docker release
- waits for https://<app>.herokuapp.com/__gtg to answer 200

The app defaults to ft-next-<package.json name>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	f := deployCmd.Flags()
	f.StringVar(&deployOpts.app, "app", "", "heroku app name (same as the positional argument)")
	f.BoolVar(&deployOpts.docker, "docker", false, "release with heroku docker:release instead of a source build")
	f.StringVar(&deployOpts.dockerImage, "docker-image", deploy.DefaultDockerImage, "base image written to a missing Dockerfile")
	f.BoolVar(&deployOpts.skipEnablePreboot, "skip-enable-preboot", false, "do not enable the preboot feature")
	f.BoolVar(&deployOpts.skipGTG, "skip-gtg", false, "do not wait for the gtg endpoint")
	f.IntVar(&deployOpts.gtg.timeoutMs, "gtg-timeout", 0, "gtg budget in milliseconds")
	f.IntVar(&deployOpts.gtg.intervalMs, "gtg-interval", 0, "gtg poll interval in milliseconds")
	rootCmd.AddCommand(deployCmd)
}

func appArg(args []string) (string, error) {
	explicit := cfg.App.Name
	if len(args) > 0 {
		explicit = args[0]
	}
	return deploy.AppName(explicit, cfg.App.Prefix, cfg.App.ProjectDir)
}

func newPlatform(token string) (*platform.Client, error) {
	return platform.New(cfg.Heroku.APIURL, token)
}

func resolveToken(ctx context.Context) (string, error) {
	return platform.TokenResolver{Explicit: cfg.Heroku.Token}.Resolve(ctx)
}

func runDeploy(c *cobra.Command, args []string) error {
	if err := checkGTGFlags(c, "gtg-timeout", "gtg-interval"); err != nil {
		return err
	}
	if deployOpts.app != "" && len(args) == 0 {
		args = []string{deployOpts.app}
	}
	app, err := appArg(args)
	if err != nil {
		return err
	}
	banner := app
	if short, err := git.ShortHash(c.Context(), cfg.App.ProjectDir); err == nil {
		banner += "@" + short
	}
	infoColor.Fprintf(c.OutOrStdout(), "Deploying %s at %s\n", banner, time.Now().Format(time.RFC1123))

	d := &deploy.Deployer{
		Token:  resolveToken,
		Commit: git.CommitHash,
		NewPlatform: func(token string) (deploy.Platform, error) {
			return newPlatform(token)
		},
		Verifier: newVerifier(),
		Dirty:    git.IsDirty,
	}
	res, err := d.Deploy(c.Context(), deploy.Options{
		App:               app,
		ProjectDir:        cfg.App.ProjectDir,
		Docker:            deployOpts.docker,
		DockerImage:       deployOpts.dockerImage,
		SkipEnablePreboot: deployOpts.skipEnablePreboot,
		SkipGTG:           deployOpts.skipGTG,
		GTG:               gtgTargetOptions(deployOpts.gtg),
	})
	if err != nil {
		return fmt.Errorf("deploy of %s failed: %w", app, err)
	}

	successColor.Fprintf(c.OutOrStdout(), "🎉 %s deployed at %s\n", res.App, res.Commit)
	return nil
}
