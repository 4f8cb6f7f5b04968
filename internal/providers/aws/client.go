// Package aws implements interfaces.ObjectStore for Amazon S3 and S3-compatible services.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/DjonatanS/dasida/internal/interfaces"
)

// maxDeleteBatch is the largest key count S3 accepts in one DeleteObjects call.
const maxDeleteBatch = 1000

// Client implements interfaces.ObjectStore for AWS S3
type Client struct {
	s3Client s3iface.S3API
}

// Config holds what is needed to build an S3 session. Empty fields fall back
// to the SDK's default chain (environment, shared config, instance role).
type Config struct {
	Profile         string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string // Optional, for S3-compatible services
	DisableSSL      bool   // Optional, for S3-compatible services
}

// NewClient creates a new AWS S3 client
func NewClient(config Config) (*Client, error) {
	awsConfig := aws.Config{}

	if config.Region != "" {
		awsConfig.Region = aws.String(config.Region)
	}

	if config.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, config.SessionToken)
	}

	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.DisableSSL = aws.Bool(config.DisableSSL)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsConfig,
		Profile:           config.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating AWS session: %w", err)
	}

	return &Client{s3Client: s3.New(sess)}, nil
}

// NewClientWithAPI wraps an existing S3 API implementation.
func NewClientWithAPI(api s3iface.S3API) *Client {
	return &Client{s3Client: api}
}

// ListPage fetches a single ListObjectsV2 page.
func (c *Client) ListPage(ctx context.Context, input interfaces.ListPageInput) (*interfaces.ListPage, error) {
	req := &s3.ListObjectsV2Input{
		Bucket: aws.String(input.Bucket),
		Prefix: aws.String(input.Prefix),
	}
	if input.ContinuationToken != "" {
		req.ContinuationToken = aws.String(input.ContinuationToken)
	}

	out, err := c.s3Client.ListObjectsV2WithContext(ctx, req)
	if err != nil {
		return nil, err
	}

	page := &interfaces.ListPage{
		Objects: make([]*interfaces.ObjectInfo, 0, len(out.Contents)),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, &interfaces.ObjectInfo{
			Key:          aws.StringValue(obj.Key),
			Bucket:       input.Bucket,
			Size:         aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
			ETag:         aws.StringValue(obj.ETag),
			StorageClass: aws.StringValue(obj.StorageClass),
		})
	}

	// A truncated response without a token cannot be continued; treat it as the last page.
	if aws.BoolValue(out.IsTruncated) {
		page.NextContinuationToken = aws.StringValue(out.NextContinuationToken)
	}

	return page, nil
}

// DeleteObjects removes keys with DeleteObjects, splitting them into
// requests of at most 1000 keys. Every key is sent exactly once.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) (*interfaces.DeleteResult, error) {
	result := &interfaces.DeleteResult{
		Deleted: make([]string, 0, len(keys)),
	}

	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, &s3.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := c.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3.Delete{
				Objects: ids,
				Quiet:   aws.Bool(false),
			},
		})
		if err != nil {
			return result, err
		}

		for _, deleted := range out.Deleted {
			result.Deleted = append(result.Deleted, aws.StringValue(deleted.Key))
		}
		for _, e := range out.Errors {
			result.Errors = append(result.Errors, interfaces.DeleteError{
				Key:     aws.StringValue(e.Key),
				Code:    aws.StringValue(e.Code),
				Message: aws.StringValue(e.Message),
			})
		}
	}

	return result, nil
}

// Close is a no-op; the S3 client holds no resources.
func (c *Client) Close() error {
	return nil
}
