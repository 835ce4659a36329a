package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"nexttools/internal/assets"
	"nexttools/internal/failfast"
)

var staticOpts struct {
	destination  string
	strip        int
	region       string
	bucket       string
	cacheControl string
	concurrency  int
}

var deployStaticCmd = &cobra.Command{
	Use:   "deploy-static <source...>",
	Short: "Upload static files to S3",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return failfast.Usagef("please provide at least one source file or directory")
		}
		if staticOpts.strip < 0 {
			return failfast.Usagef("--strip must be zero or more, got %d", staticOpts.strip)
		}
		files, err := assets.StaticFiles(args, staticOpts.destination, staticOpts.strip)
		if err != nil {
			return err
		}
		region := staticOpts.region
		if region == "" {
			region = cfg.AWS.Region
		}
		bucket := staticOpts.bucket
		if bucket == "" {
			bucket = cfg.AWS.Bucket
		}
		return publish(c, region, bucket, staticOpts.cacheControl, files)
	},
}

var deployHashedCmd = &cobra.Command{
	Use:   "deploy-hashed-assets [app]",
	Short: "Upload the hashed asset bundles listed in public/asset-hashes.json",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		app, err := appArg(args)
		if err != nil {
			return err
		}
		files, err := assets.HashedFiles(filepath.Join(cfg.App.ProjectDir, "public"), app)
		if err != nil {
			return err
		}
		return publish(c, cfg.AWS.Region, cfg.AWS.HashedBucket, assets.ImmutableCache, files)
	},
}

func init() {
	f := deployStaticCmd.Flags()
	f.StringVar(&staticOpts.destination, "destination", "", "key prefix in the bucket")
	f.IntVar(&staticOpts.strip, "strip", 0, "leading path components to drop from each source")
	f.StringVar(&staticOpts.region, "region", "", "aws region (default from config)")
	f.StringVar(&staticOpts.bucket, "bucket", "", "s3 bucket (default from config)")
	f.StringVar(&staticOpts.cacheControl, "cache-control", "", "Cache-Control header for every object")
	f.IntVar(&staticOpts.concurrency, "concurrency", assets.DefaultConcurrency, "uploads in flight")
	rootCmd.AddCommand(deployStaticCmd, deployHashedCmd)
}

func publish(c *cobra.Command, region, bucket, cacheControl string, files []assets.File) error {
	client, err := assets.NewS3Client(c.Context(), region, cfg.AWS.AccessKey, cfg.AWS.SecretKey)
	if err != nil {
		return err
	}
	p := &assets.Publisher{
		Client:       client,
		Bucket:       bucket,
		CacheControl: cacheControl,
		Concurrency:  staticOpts.concurrency,
	}
	if err := p.Upload(c.Context(), files); err != nil {
		return err
	}
	successColor.Fprintf(c.OutOrStdout(), "✓ %d file(s) uploaded to s3://%s\n", len(files), bucket)
	return nil
}
