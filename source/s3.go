// source/s3.go
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher downloads the workbook from an S3 bucket. Static keys are used
// when configured, otherwise the default AWS credential chain (IAM roles).
type S3Fetcher struct {
	cfg config.S3Config
}

func NewS3Fetcher(cfg config.S3Config) *S3Fetcher {
	return &S3Fetcher{cfg: cfg}
}

func (f *S3Fetcher) Provider() Provider { return S3 }

func (f *S3Fetcher) client(ctx context.Context) (*s3.Client, error) {
	if f.cfg.Bucket == "" || f.cfg.Key == "" {
		return nil, errors.New("s3 bucket and key must be configured")
	}
	region := f.cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if f.cfg.AccessKeyID != "" && f.cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKeyID, f.cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if f.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (f *S3Fetcher) Fetch(ctx context.Context) (*Table, error) {
	client, err := f.client(ctx)
	if err != nil {
		return nil, unavailable(S3, err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.cfg.Bucket),
		Key:    aws.String(f.cfg.Key),
	})
	if err != nil {
		return nil, unavailable(S3, fmt.Errorf("failed to get s3://%s/%s: %w", f.cfg.Bucket, f.cfg.Key, err))
	}
	defer out.Body.Close()

	data, err := readAll(out.Body)
	if err != nil {
		return nil, unavailable(S3, fmt.Errorf("failed to read s3://%s/%s: %w", f.cfg.Bucket, f.cfg.Key, err))
	}

	table, err := DecodeDocument(f.cfg.Key, data)
	if err != nil {
		return nil, unavailable(S3, err)
	}
	return table, nil
}

// Validate issues a HEAD on the object.
func (f *S3Fetcher) Validate(ctx context.Context) error {
	client, err := f.client(ctx)
	if err != nil {
		return unavailable(S3, err)
	}
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.cfg.Bucket),
		Key:    aws.String(f.cfg.Key),
	})
	if err != nil {
		return unavailable(S3, err)
	}
	return nil
}
