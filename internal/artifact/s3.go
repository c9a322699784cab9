package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Config configures the S3 sink. Credentials fall back to the default AWS
// chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// S3 uploads artifacts to <prefix>/<id>/<name>. Objects are never overwritten.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 builds an S3 sink from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	return newS3(ctx, cfg, nil)
}

func newS3(ctx context.Context, cfg S3Config, httpClient *http.Client) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required for s3 export sink")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if httpClient != nil {
			o.HTTPClient = httpClient
		}
	})
	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Driver implements Sink.
func (s *S3) Driver() Driver { return DriverS3 }

// Put implements Sink.
func (s *S3) Put(ctx context.Context, id, name string, payload []byte, contentType string) (Artifact, error) {
	if id == "" {
		return Artifact{}, fmt.Errorf("artifact id required for s3 sink")
	}
	key := objectKey(s.prefix, id, name)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err == nil {
		return Artifact{}, fmt.Errorf("object s3://%s/%s already exists", s.bucket, key)
	}
	if !isNotFound(err) {
		return Artifact{}, fmt.Errorf("failed to check s3://%s/%s: %w", s.bucket, key, err)
	}
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		Metadata:      map[string]string{"export-id": id},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Artifact{}, fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return Artifact{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(payload)),
		Location:    fmt.Sprintf("s3://%s/%s", s.bucket, key),
		CreatedAt:   time.Now(),
	}, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

func objectKey(prefix, id, name string) string {
	return path.Join(prefix, id, name)
}
