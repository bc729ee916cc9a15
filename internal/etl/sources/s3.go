package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// ── S3 Source ───────────────────────────────────────────────
// Reads files from an S3 (or S3-compatible) bucket prefix.

// TypeS3 is the registry key of the S3 source.
const TypeS3 = "s3"

func init() {
	etl.RegisterSource(etl.SourceSpec{
		Type:  TypeS3,
		Label: "S3 bucket",
		ConfigFields: []etl.ConfigField{
			{Key: "bucket", Label: "Bucket", Required: true},
			{Key: "prefix", Label: "Prefix", Help: "Key prefix holding the CSV files"},
			{Key: "region", Label: "Region"},
			{Key: "endpoint", Label: "Endpoint", Help: "Custom endpoint for S3-compatible services"},
			{Key: "accessKeyId", Label: "Access key ID"},
			{Key: "secretAccessKey", Label: "Secret access key"},
		},
	}, func(ctx context.Context, cfg etl.SourceConfig) (etl.Source, error) {
		opts := S3Options{}
		opts.Bucket, _ = cfg["bucket"].(string)
		opts.Prefix, _ = cfg["prefix"].(string)
		opts.Region, _ = cfg["region"].(string)
		opts.Endpoint, _ = cfg["endpoint"].(string)
		opts.AccessKeyID, _ = cfg["accessKeyId"].(string)
		opts.SecretAccessKey, _ = cfg["secretAccessKey"].(string)
		return NewS3Source(ctx, opts)
	})
}

// S3Options configures an S3Source.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Getter is the subset of the S3 client the source needs.
type S3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source opens objects under bucket/prefix.
type S3Source struct {
	client S3Getter
	bucket string
	prefix string
}

// NewS3Source loads the default AWS configuration chain, applying any
// explicit region, credentials and endpoint from opts. No request is made.
func NewS3Source(ctx context.Context, opts S3Options) (*S3Source, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg, clientOpts...), opts.Bucket, opts.Prefix), nil
}

// NewS3SourceWithClient builds a source around an existing client.
func NewS3SourceWithClient(client S3Getter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Source) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: TypeS3, Label: "S3 bucket"}
}

func (s *S3Source) Location() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// Key returns the object key for a file name.
func (s *S3Source) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.Key(name)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", etl.ErrInputMissing, s.bucket, key)
		}
		return nil, fmt.Errorf("get s3 object %s: %w", key, err)
	}
	return resp.Body, nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// ParseS3URL splits s3://bucket/prefix into its parts.
func ParseS3URL(url string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(url, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	rest := strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return parts[0], prefix, nil
}
