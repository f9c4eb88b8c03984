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
)

// StorageService uploads post images to S3-compatible object storage.
type StorageService struct {
	client    *s3.Client
	bucket    string
	region    string
	publicURL string
}

// NewStorageService creates a new storage service
func NewStorageService(region, bucket, accessKey, secretKey, endpoint, publicURL string) (*StorageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &StorageService{
		client:    client,
		bucket:    bucket,
		region:    region,
		publicURL: publicURL,
	}, nil
}

// ImageKey builds the object key for a post image:
// posts/{uid-or-"anon"}_{unixMillis}.jpg
func ImageKey(uid *string, now time.Time) string {
	owner := "anon"
	if uid != nil {
		owner = *uid
	}
	return fmt.Sprintf("posts/%s_%d.jpg", owner, now.UnixMilli())
}

// Upload stores the object and returns its publicly fetchable URL.
func (s *StorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
