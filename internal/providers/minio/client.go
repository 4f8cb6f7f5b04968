// Package minio implements interfaces.ObjectStore for MinIO and other S3-compatible servers
package minio

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DjonatanS/dasida/internal/interfaces"
)

type Client struct {
	core *minio.Core
}

type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	MaxRetries int // SDK default when zero
}

func NewClient(config Config) (*Client, error) {
	core, err := minio.NewCore(config.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure:     config.UseSSL,
		Region:     config.Region,
		MaxRetries: config.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating MinIO client: %w", err)
	}

	return &Client{core: core}, nil
}

// ListPage uses the low-level V2 listing so the continuation token stays
// under the caller's control.
func (c *Client) ListPage(ctx context.Context, input interfaces.ListPageInput) (*interfaces.ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.core.ListObjectsV2(input.Bucket, input.Prefix, "", input.ContinuationToken, "", 0)
	if err != nil {
		return nil, err
	}

	page := &interfaces.ListPage{
		Objects: make([]*interfaces.ObjectInfo, 0, len(res.Contents)),
	}
	for _, object := range res.Contents {
		page.Objects = append(page.Objects, &interfaces.ObjectInfo{
			Key:          object.Key,
			Bucket:       input.Bucket,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
			StorageClass: object.StorageClass,
			Metadata:     object.UserMetadata,
		})
	}

	if res.IsTruncated {
		page.NextContinuationToken = res.NextContinuationToken
	}

	return page, nil
}

// DeleteObjects streams keys into the multi-object delete API and reports
// the keys the server confirmed. Errors carrying an S3 error code are per-key
// outcomes; anything else (transport, DNS, a rejected request) fails the call.
// The result channel is always drained so the SDK goroutines can finish.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) (*interfaces.DeleteResult, error) {
	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			select {
			case objectsCh <- minio.ObjectInfo{Key: key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	result := &interfaces.DeleteResult{
		Deleted: make([]string, 0, len(keys)),
	}
	var requestErr error
	for res := range c.core.RemoveObjectsWithResult(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if res.Err == nil {
			result.Deleted = append(result.Deleted, res.ObjectName)
			continue
		}
		if requestErr != nil {
			continue
		}

		code := minio.ToErrorResponse(res.Err).Code
		if res.ObjectName == "" || code == "" {
			requestErr = res.Err
			continue
		}
		result.Errors = append(result.Errors, interfaces.DeleteError{
			Key:     res.ObjectName,
			Code:    code,
			Message: res.Err.Error(),
		})
	}

	if requestErr != nil {
		return result, fmt.Errorf("error removing objects from %s: %w", bucket, requestErr)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

func (c *Client) Close() error {
	return nil
}
