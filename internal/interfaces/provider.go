package interfaces

import (
	"context"
	"time"
)

// ObjectInfo is a snapshot of one stored object as reported by a listing
// call. The object may change or disappear after it was listed.
type ObjectInfo struct {
	Key          string
	Bucket       string
	Size         int64
	LastModified time.Time
	ETag         string
	StorageClass string
	Metadata     map[string]string
}

// ListPageInput selects one page of a listing.
type ListPageInput struct {
	Bucket string
	Prefix string
	// ContinuationToken is empty for the first page.
	ContinuationToken string
}

// ListPage is one page of a listing in the order the backend returned it.
type ListPage struct {
	Objects []*ObjectInfo
	// NextContinuationToken is empty when there are no further pages.
	NextContinuationToken string
}

// DeleteError is a per-key failure reported by the backend.
type DeleteError struct {
	Key     string
	Code    string
	Message string
}

// DeleteResult is the backend's answer to a batch delete.
type DeleteResult struct {
	Deleted []string
	Errors  []DeleteError
}

// ObjectStore is the remote object storage surface used by dasida: a paged
// listing call and a batch delete call.
type ObjectStore interface {
	ListPage(ctx context.Context, input ListPageInput) (*ListPage, error)
	DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error)
	Close() error
}
