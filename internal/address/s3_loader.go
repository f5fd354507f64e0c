package address

import (
	"context"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// ObjectGetter is the subset of the S3 client used by the loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads gzipped datasets from an S3 bucket.
type s3Loader struct {
	client ObjectGetter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Loader creates an S3-backed Loader using the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Loader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, errors.Wrap(err, "load AWS configuration")
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 address loader initialised")

	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3LoaderWithClient creates an S3-backed Loader over an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket, prefix string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "address-s3-loader").Logger(),
	}
}

func (l *s3Loader) Load(ctx context.Context, level model.AddressLevel, name string) ([]model.AddressNode, error) {
	key := l.prefix + name
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("loading address dataset from S3")

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to get object from S3")
		return nil, errors.Wrapf(err, "get s3://%s/%s", l.bucket, key)
	}
	defer func() { _ = out.Body.Close() }()

	nodes, err := Decode(ctx, out.Body, level)
	if err != nil {
		return nil, errors.Wrapf(err, "decode s3://%s/%s", l.bucket, key)
	}

	l.logger.Info().
		Str("key", key).
		Int("nodes", len(nodes)).
		Msg("address dataset loaded from S3")
	return nodes, nil
}

// fallbackLoader tries S3 first and falls back to local files.
type fallbackLoader struct {
	primary  Loader
	fallback Loader
	logger   zerolog.Logger
}

// NewFallbackLoader returns a Loader that reads from primary and retries
// with fallback on failure. A nil primary means local only.
func NewFallbackLoader(primary, fallback Loader, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "address-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, level model.AddressLevel, name string) ([]model.AddressNode, error) {
	if l.primary == nil {
		return l.fallback.Load(ctx, level, name)
	}

	nodes, err := l.primary.Load(ctx, level, name)
	if err == nil {
		return nodes, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	l.logger.Warn().
		Err(err).
		Str("file", name).
		Msg("primary load failed, falling back to local file")

	nodes, fbErr := l.fallback.Load(ctx, level, name)
	if fbErr != nil {
		return nil, errors.Wrapf(fbErr, "both loaders failed for %s (primary: %v)", name, err)
	}
	return nodes, nil
}
