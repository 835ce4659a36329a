// Package assets uploads static and hashed asset files to S3.
package assets

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"nexttools/internal/logger"
)

const (
	DefaultConcurrency = 4
	ImmutableCache     = "public, max-age=31536000"
)

var assetLogs = logger.PackageLogger("assets", "📦")

// Uploader is the part of *s3.Client used here.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client for region. Static credentials are used when
// both keys are given, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, region, accessKey, secretKey string) (*s3.Client, error) {
	if region == "" {
		return nil, fmt.Errorf("aws region is not set")
	}
	opts := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// File is one local file and the key it is stored under.
type File struct {
	Path string
	Key  string
}

type Publisher struct {
	Client       Uploader
	Bucket       string
	CacheControl string
	Concurrency  int
}

// Upload puts every file in the bucket, a few at a time. The first failure
// cancels the remaining uploads.
func (p *Publisher) Upload(ctx context.Context, files []File) error {
	if p.Bucket == "" {
		return fmt.Errorf("s3 bucket is not set")
	}
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, f := range files {
		f := f
		g.Go(func() error { return p.put(gctx, f) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	assetLogs.Success("uploaded %d file(s) to s3://%s", len(files), p.Bucket)
	return nil
}

func (p *Publisher) put(ctx context.Context, f File) error {
	contentType, err := ContentType(f.Path)
	if err != nil {
		return err
	}
	body, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer body.Close()

	in := &s3.PutObjectInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(f.Key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if p.CacheControl != "" {
		in.CacheControl = aws.String(p.CacheControl)
	}
	if _, err := p.Client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("uploading %s to s3://%s/%s: %w", f.Path, p.Bucket, f.Key, err)
	}
	assetLogs.Debug("uploaded %s -> s3://%s/%s (%s)", f.Path, p.Bucket, f.Key, contentType)
	return nil
}

// ContentType picks a type from the file extension and falls back to
// sniffing the content.
func ContentType(path string) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t, nil
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting content type of %s: %w", path, err)
	}
	return m.String(), nil
}
