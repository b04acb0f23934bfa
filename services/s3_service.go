package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/utils"
)

// presignTTL is how long an archived document link stays valid.
const presignTTL = time.Hour

// DocumentArchive stores rendered documents and hands out download links.
type DocumentArchive interface {
	Upload(ctx context.Context, key string, doc *Document) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// ArchiveKey namespaces archived documents per workshop and quote. The random
// segment keeps earlier renderings of the same quote.
func ArchiveKey(workshopID, quoteID uint, fileName string) string {
	return fmt.Sprintf("workshops/%d/quotes/%d/%s-%s", workshopID, quoteID, uuid.NewString(), utils.SafeFileName(fileName))
}

// S3Archive is the DocumentArchive backed by an S3 bucket.
type S3Archive struct {
	client *s3.Client
	bucket string
}

// NewS3Archive builds the archive from the application config. Static
// credentials are used when both keys are set, otherwise the default AWS
// chain. AWSEndpoint points the client at an S3-compatible store.
func NewS3Archive(ctx context.Context, cfg *config.Config) (*S3Archive, error) {
	if !cfg.ArchiveEnabled() {
		return nil, fmt.Errorf("AWS_S3_BUCKET is not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: cfg.AWSS3Bucket}, nil
}

func (a *S3Archive) Upload(ctx context.Context, key string, doc *Document) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(doc.Content),
		ContentType:        aws.String(doc.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", utils.SafeFileName(doc.FileName))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (a *S3Archive) PresignedURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(a.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	logger.L().Debug("generated presigned URL", zap.String("key", key))
	return request.URL, nil
}
