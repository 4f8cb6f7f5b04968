// Package gcp implements interfaces.ObjectStore for Google Cloud Storage
package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/DjonatanS/dasida/internal/interfaces"
)

// pageSize is the number of objects requested per listing page.
const pageSize = 1000

// Client implements interfaces.ObjectStore for Google Cloud Storage
type Client struct {
	client    *storage.Client
	projectID string
}

// Config contains the settings for the GCS client
type Config struct {
	ProjectID string // Billing project for requester-pays buckets
	Endpoint  string // Optional, e.g. a local emulator
}

// NewClient creates a new GCS client using Application Default Credentials
func NewClient(ctx context.Context, config Config) (*Client, error) {
	var opts []option.ClientOption
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating GCS client: %w", err)
	}

	return &Client{
		client:    client,
		projectID: config.ProjectID,
	}, nil
}

// Close closes the GCS client
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) bucket(name string) *storage.BucketHandle {
	bucket := c.client.Bucket(name)
	if c.projectID != "" {
		bucket = bucket.UserProject(c.projectID)
	}
	return bucket
}

// ListPage reads one page of the object iterator through an iterator.Pager,
// which exposes the page token the listing API uses as its cursor.
func (c *Client) ListPage(ctx context.Context, input interfaces.ListPageInput) (*interfaces.ListPage, error) {
	it := c.bucket(input.Bucket).Objects(ctx, &storage.Query{Prefix: input.Prefix})

	var attrs []*storage.ObjectAttrs
	next, err := iterator.NewPager(it, pageSize, input.ContinuationToken).NextPage(&attrs)
	if err != nil {
		return nil, err
	}

	page := &interfaces.ListPage{
		Objects:               make([]*interfaces.ObjectInfo, 0, len(attrs)),
		NextContinuationToken: next,
	}
	for _, objAttrs := range attrs {
		page.Objects = append(page.Objects, &interfaces.ObjectInfo{
			Key:          objAttrs.Name,
			Bucket:       input.Bucket,
			Size:         objAttrs.Size,
			LastModified: objAttrs.Updated,
			ETag:         objAttrs.Etag,
			StorageClass: objAttrs.StorageClass,
			Metadata:     objAttrs.Metadata,
		})
	}

	return page, nil
}

// DeleteObjects deletes each key in turn; GCS has no multi-object delete in
// its JSON API. A missing object is reported against its key. Any other
// failure stops the run and is returned with what was deleted so far.
func (c *Client) DeleteObjects(ctx context.Context, bucketName string, keys []string) (*interfaces.DeleteResult, error) {
	bucket := c.bucket(bucketName)
	result := &interfaces.DeleteResult{
		Deleted: make([]string, 0, len(keys)),
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := bucket.Object(key).Delete(ctx)
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, key)
		case errors.Is(err, storage.ErrObjectNotExist):
			result.Errors = append(result.Errors, interfaces.DeleteError{Key: key, Code: "NoSuchKey", Message: err.Error()})
		default:
			return result, fmt.Errorf("error deleting %s from %s: %w", key, bucketName, err)
		}
	}

	return result, nil
}
