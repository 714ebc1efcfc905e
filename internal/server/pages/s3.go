package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/booklib/internal/server/models"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const defaultPresignTTL = 15 * time.Minute

type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string // MinIO or another S3-compatible endpoint; empty for AWS
	AccessKey    string
	SecretKey    string
	TTL          time.Duration
}

// S3Resolver presigns a GET for every stored page path. Absolute URLs are
// passed through.
type S3Resolver struct {
	bucket string
	ttl    time.Duration
	client *s3.PresignClient
}

func NewS3Resolver(ctx context.Context, opts S3Options) (*S3Resolver, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &S3Resolver{bucket: opts.Bucket, ttl: ttl, client: newS3PresignClient(client)}, nil
}

func (r *S3Resolver) Resolve(ctx context.Context, book *models.Book) ([]string, error) {
	out := make([]string, 0, len(book.Pages))
	for _, p := range book.Pages {
		if isAbsoluteURL(p) {
			out = append(out, p)
			continue
		}

		key := objectKey(p)
		req, err := presignGetObject(r.client, ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(r.ttl))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", key, err)
		}
		out = append(out, req.URL)
	}
	return out, nil
}
