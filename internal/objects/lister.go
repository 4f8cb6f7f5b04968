// Package objects lists and bulk-deletes bucket objects selected by a prefix
// and a glob pattern.
package objects

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/storage"
)

// Request selects the objects an operation works on.
type Request struct {
	Bucket string
	// Prefix is sent to the backend; only keys starting with it are listed.
	Prefix string
	// Pattern is a glob applied to the full key after listing. It always
	// matches as a suffix (see Match). Empty selects everything.
	Pattern string

	// Store is used when set. Otherwise a store is opened from Session for
	// the duration of the call.
	Store   interfaces.ObjectStore
	Session config.Session

	Logger *slog.Logger
}

func (r Request) logger() *slog.Logger {
	l := r.Logger
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.With("bucket", r.Bucket, "prefix", r.Prefix, "pattern", r.Pattern)
}

func (r Request) validate() error {
	if r.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidInput)
	}
	return nil
}

// openStore returns the request's store, or opens one from its session. The
// returned func releases a store opened here and is a no-op otherwise.
func (r Request) openStore(ctx context.Context) (interfaces.ObjectStore, func(), error) {
	if r.Store != nil {
		return r.Store, func() {}, nil
	}

	store, err := storage.Open(ctx, r.Session)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// ListObjects returns every object under req.Prefix whose key matches
// req.Pattern, in the order the backend listed them. Pages are fetched one at
// a time until the backend returns no continuation token. Backend errors are
// returned wrapped but not retried.
func ListObjects(ctx context.Context, req Request) ([]*interfaces.ObjectInfo, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	match, err := compilePattern(req.Pattern)
	if err != nil {
		return nil, err
	}

	store, release, err := req.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := req.logger()
	contents := make([]*interfaces.ObjectInfo, 0)
	token := ""
	pages := 0

	for {
		page, err := store.ListPage(ctx, interfaces.ListPageInput{
			Bucket:            req.Bucket,
			Prefix:            req.Prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects in %s/%s: %w", req.Bucket, req.Prefix, err)
		}
		if page == nil {
			return nil, fmt.Errorf("list objects in %s/%s: %w", req.Bucket, req.Prefix, ErrNoResponse)
		}
		pages++

		for _, obj := range page.Objects {
			if match(obj.Key) {
				contents = append(contents, obj)
			}
		}
		logger.Debug("Listed page", "page", pages, "objects", len(page.Objects), "matched_total", len(contents))

		if page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}

	logger.Debug("Listing complete", "pages", pages, "matched", len(contents))
	return contents, nil
}
