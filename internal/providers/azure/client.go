package azure

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/DjonatanS/dasida/internal/interfaces"
)

type Client struct {
	serviceURL azblob.ServiceURL
}

type Config struct {
	AccountName string
	AccountKey  string
	EndpointURL string
}

func NewClient(config Config) (*Client, error) {
	credential, err := azblob.NewSharedKeyCredential(config.AccountName, config.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure credentials: %w", err)
	}

	endpointURL := config.EndpointURL
	if endpointURL == "" {
		endpointURL = fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	serviceURL, err := url.Parse(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing endpoint URL: %w", err)
	}

	return &Client{
		serviceURL: azblob.NewServiceURL(*serviceURL, pipeline),
	}, nil
}

// ListPage lists one flat segment of a container; the segment marker is the cursor.
func (c *Client) ListPage(ctx context.Context, input interfaces.ListPageInput) (*interfaces.ListPage, error) {
	containerURL := c.serviceURL.NewContainerURL(input.Bucket)

	marker := azblob.Marker{}
	if input.ContinuationToken != "" {
		token := input.ContinuationToken
		marker.Val = &token
	}

	response, err := containerURL.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
		Prefix: input.Prefix,
		Details: azblob.BlobListingDetails{
			Metadata: true,
		},
	})
	if err != nil {
		return nil, err
	}

	page := &interfaces.ListPage{
		Objects: make([]*interfaces.ObjectInfo, 0, len(response.Segment.BlobItems)),
	}
	if response.NextMarker.NotDone() {
		page.NextContinuationToken = *response.NextMarker.Val
	}

	for _, blob := range response.Segment.BlobItems {
		var size int64
		if blob.Properties.ContentLength != nil {
			size = *blob.Properties.ContentLength
		}
		page.Objects = append(page.Objects, &interfaces.ObjectInfo{
			Key:          blob.Name,
			Bucket:       input.Bucket,
			Size:         size,
			LastModified: blob.Properties.LastModified,
			ETag:         string(blob.Properties.Etag),
			StorageClass: string(blob.Properties.AccessTier),
			Metadata:     blob.Metadata,
		})
	}

	return page, nil
}

// DeleteObjects deletes each blob and its snapshots. Blob storage has no
// batch endpoint in this SDK, so a missing blob is reported against its key.
// Any other failure stops the run and is returned with what was deleted so far.
func (c *Client) DeleteObjects(ctx context.Context, containerName string, keys []string) (*interfaces.DeleteResult, error) {
	containerURL := c.serviceURL.NewContainerURL(containerName)
	result := &interfaces.DeleteResult{
		Deleted: make([]string, 0, len(keys)),
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		blobURL := containerURL.NewBlockBlobURL(key)
		_, err := blobURL.Delete(ctx, azblob.DeleteSnapshotsOptionInclude, azblob.BlobAccessConditions{})
		if err != nil {
			var stgErr azblob.StorageError
			if errors.As(err, &stgErr) && stgErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
				result.Errors = append(result.Errors, interfaces.DeleteError{
					Key:     key,
					Code:    string(stgErr.ServiceCode()),
					Message: err.Error(),
				})
				continue
			}
			return result, fmt.Errorf("error deleting %s from %s: %w", key, containerName, err)
		}
		result.Deleted = append(result.Deleted, key)
	}

	return result, nil
}

func (c *Client) Close() error {
	return nil
}
