package objects

import (
	"context"
	"fmt"

	"github.com/DjonatanS/dasida/internal/interfaces"
)

// DeleteObjects deletes every object ListObjects selects for req with a
// single batch delete, and returns the backend's result unmodified.
//
// A request that selects nothing fails with a *NotFoundError: an empty match
// on a destructive operation usually means a mistyped prefix or pattern.
//
// Listing and deleting are separate calls, so the key set is not a snapshot.
// Objects written after the listing are not deleted, and objects removed by
// someone else in between show up in the backend's result as it reports them.
func DeleteObjects(ctx context.Context, req Request) (*interfaces.DeleteResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	store, release, err := req.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	req.Store = store

	contents, err := ListObjects(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(contents) == 0 {
		return nil, &NotFoundError{Bucket: req.Bucket, Prefix: req.Prefix, Pattern: req.Pattern}
	}

	keys := make([]string, 0, len(contents))
	for _, obj := range contents {
		keys = append(keys, obj.Key)
	}

	logger := req.logger()
	logger.Info("Deleting objects", "count", len(keys))

	result, err := store.DeleteObjects(ctx, req.Bucket, keys)
	if err != nil {
		return nil, fmt.Errorf("delete objects in %s/%s: %w", req.Bucket, req.Prefix, err)
	}
	if result == nil {
		return nil, fmt.Errorf("delete objects in %s/%s: %w", req.Bucket, req.Prefix, ErrNoResponse)
	}

	logger.Info("Delete finished", "deleted", len(result.Deleted), "errors", len(result.Errors))
	return result, nil
}
