// Package deploy sequences a release: auth and commit lookup, the about
// file, build alongside preboot, release, then the gtg check.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"nexttools/internal/about"
	"nexttools/internal/gtg"
	"nexttools/internal/logger"
	"nexttools/internal/platform"
)

const DefaultDockerImage = "financialtimes/next-heroku:0.12.6"

var deployLogs = logger.PackageLogger("deploy", "🚀")

// Platform is the subset of the platform client a deploy uses.
type Platform interface {
	EnablePreboot(ctx context.Context, app string) error
	CreateSource(ctx context.Context) (*platform.Source, error)
	UploadSource(ctx context.Context, putURL string, body io.Reader, size int64) error
	CreateBuild(ctx context.Context, app string, in platform.BuildCreate) (*platform.Build, error)
	WaitForBuild(ctx context.Context, app, id string, interval time.Duration) (*platform.Build, error)
}

type Verifier interface {
	Verify(ctx context.Context, t gtg.Target) (gtg.Outcome, error)
}

type Options struct {
	App               string
	ProjectDir        string
	Docker            bool
	DockerImage       string
	SkipEnablePreboot bool
	SkipGTG           bool
	GTG               gtg.TargetOptions
	BuildPollInterval time.Duration
}

// Deployer holds the collaborators. Every field is required except Exec,
// which defaults to running the command with os/exec, and Dirty.
type Deployer struct {
	Token       func(ctx context.Context) (string, error)
	Commit      func(ctx context.Context, dir string) (string, error)
	NewPlatform func(token string) (Platform, error)
	Verifier    Verifier
	Exec        func(ctx context.Context, dir, name string, args ...string) error
	// Dirty reports uncommitted changes in the project; a dirty tree is
	// released with a warning.
	Dirty func(ctx context.Context, dir string) bool
}

// Result summarises a finished deploy.
type Result struct {
	App     string
	Commit  string
	BuildID string
	Outcome *gtg.Outcome
}

func (d *Deployer) Deploy(ctx context.Context, opts Options) (*Result, error) {
	if opts.App == "" {
		return nil, errors.New("deploy: app name is required")
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if opts.BuildPollInterval <= 0 {
		opts.BuildPollInterval = 2 * time.Second
	}
	// fail before doing anything remote when the gtg target is unusable
	var target gtg.Target
	if !opts.SkipGTG {
		t, err := gtg.NewTarget(opts.App, opts.GTG)
		if err != nil {
			return nil, err
		}
		target = t
	}

	res := &Result{App: opts.App}

	// Phase 1: token and commit are independent
	var token string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := d.Token(gctx)
		if err != nil {
			return fmt.Errorf("resolving heroku token: %w", err)
		}
		token = t
		return nil
	})
	g.Go(func() error {
		c, err := d.Commit(gctx, opts.ProjectDir)
		if err != nil {
			return fmt.Errorf("reading commit: %w", err)
		}
		res.Commit = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Dirty != nil && d.Dirty(ctx, opts.ProjectDir) {
		deployLogs.Warn("%s has uncommitted changes; releasing them as %s", opts.ProjectDir, res.Commit)
	}

	pf, err := d.NewPlatform(token)
	if err != nil {
		return nil, err
	}

	var description string
	if pkg, err := readPackageJSON(opts.ProjectDir); err == nil {
		description = pkg.Description
	}
	if _, err := about.Write(opts.ProjectDir, about.About{
		Name:        opts.App,
		Description: description,
		Versions:    []string{res.Commit},
		AppVersion:  res.Commit,
	}); err != nil {
		return nil, err
	}

	// Phase 2: build alongside preboot
	var sourceURL string
	err = deployLogs.Timed("build", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if opts.Docker {
				return writeDockerfile(opts.ProjectDir, opts.DockerImage)
			}
			u, err := d.uploadSource(gctx, pf, opts.ProjectDir)
			sourceURL = u
			return err
		})
		if opts.SkipEnablePreboot {
			deployLogs.Info("skipping enable preboot step")
		} else {
			g.Go(func() error {
				if err := pf.EnablePreboot(gctx, opts.App); err != nil {
					return fmt.Errorf("enabling preboot on %s: %w", opts.App, err)
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	// Phase 3: release
	deployLogs.Info("going to deploy to %s", opts.App)
	err = deployLogs.Timed("release", func() error {
		if opts.Docker {
			if err := d.exec(ctx, opts.ProjectDir, "heroku", "docker:release", "--app", opts.App); err != nil {
				return fmt.Errorf("docker release of %s: %w", opts.App, err)
			}
			return nil
		}
		b, err := pf.CreateBuild(ctx, opts.App, platform.BuildCreate{
			SourceBlob: platform.BuildSource{URL: sourceURL, Version: res.Commit},
		})
		if err != nil {
			return fmt.Errorf("creating build for %s: %w", opts.App, err)
		}
		res.BuildID = b.ID
		_, err = pf.WaitForBuild(ctx, opts.App, b.ID, opts.BuildPollInterval)
		return err
	})
	if err != nil {
		if res.BuildID != "" {
			return res, err
		}
		return nil, err
	}

	// Phase 4: gtg
	if opts.SkipGTG {
		deployLogs.Info("skipping gtg check")
		return res, nil
	}
	out, err := d.Verifier.Verify(ctx, target)
	res.Outcome = &out
	if err != nil {
		return res, err
	}
	return res, nil
}

func (d *Deployer) uploadSource(ctx context.Context, pf Platform, dir string) (string, error) {
	tarball, err := Tarball(dir)
	if err != nil {
		return "", err
	}
	src, err := pf.CreateSource(ctx)
	if err != nil {
		return "", fmt.Errorf("creating source: %w", err)
	}
	size := int64(tarball.Len())
	if err := pf.UploadSource(ctx, src.SourceBlob.PutURL, tarball, size); err != nil {
		return "", err
	}
	deployLogs.Debug("uploaded %d byte source", size)
	return src.SourceBlob.GetURL, nil
}

func writeDockerfile(dir, image string) error {
	if image == "" {
		image = DefaultDockerImage
	}
	path := filepath.Join(dir, "Dockerfile")
	if _, err := os.Stat(path); err == nil {
		deployLogs.Info("using existing Dockerfile")
		return nil
	}
	deployLogs.Info("writing Dockerfile")
	if err := os.WriteFile(path, []byte("FROM "+image), 0o644); err != nil {
		return fmt.Errorf("writing Dockerfile: %w", err)
	}
	return nil
}

func (d *Deployer) exec(ctx context.Context, dir, name string, args ...string) error {
	if d.Exec != nil {
		return d.Exec(ctx, dir, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
