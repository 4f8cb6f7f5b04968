package storage

import (
	"context"
	"io"
	"testing"

	"log/slog"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/interfaces"
)

// fakeProvider is a no-op ObjectStore that records Close.
type fakeProvider struct {
	closed bool
}

func (f *fakeProvider) ListPage(ctx context.Context, input interfaces.ListPageInput) (*interfaces.ListPage, error) {
	return &interfaces.ListPage{}, nil
}
func (f *fakeProvider) DeleteObjects(ctx context.Context, bucket string, keys []string) (*interfaces.DeleteResult, error) {
	return &interfaces.DeleteResult{}, nil
}
func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFactory(providers map[string]interfaces.ObjectStore) *Factory {
	return &Factory{providers: providers, logger: discardLogger()}
}

func TestFactory_GetProvider_Success(t *testing.T) {
	factory := newTestFactory(map[string]interfaces.ObjectStore{"p1": &fakeProvider{}})
	p, err := factory.GetProvider("p1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p == nil {
		t.Fatal("expected provider, got nil")
	}
}

func TestFactory_GetProvider_NotFound(t *testing.T) {
	factory := newTestFactory(map[string]interfaces.ObjectStore{})
	_, err := factory.GetProvider("missing")
	if err == nil {
		t.Fatal("expected error for missing provider, got nil")
	}
}

func TestFactory_CloseAndIDs(t *testing.T) {
	a, b := &fakeProvider{}, &fakeProvider{}
	factory := newTestFactory(map[string]interfaces.ObjectStore{"b": b, "a": a})

	ids := factory.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected sorted ids [a b], got %v", ids)
	}

	factory.Close()
	if !a.closed || !b.closed {
		t.Fatal("expected every provider to be closed")
	}
}

func TestNewFactory_UnknownType(t *testing.T) {
	cfg := &config.Config{Providers: []config.ProviderConfig{{ID: "x", Type: config.ProviderType("unknown")}}}
	_, err := NewFactory(context.Background(), cfg, discardLogger())
	if err == nil {
		t.Fatal("expected error for unknown provider type, got nil")
	}
}

func TestNewFactory_MinIO(t *testing.T) {
	cfg := &config.Config{
		DefaultProvider: "local",
		Providers: []config.ProviderConfig{{
			ID:    "local",
			Type:  config.MINIO,
			MinIO: &config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"},
		}},
	}
	factory, err := NewFactory(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewFactory returned error: %v", err)
	}
	defer factory.Close()

	if _, err := factory.GetProvider("local"); err != nil {
		t.Fatalf("expected provider 'local': %v", err)
	}
}

func TestOpen_UnknownProvider(t *testing.T) {
	if _, err := Open(context.Background(), config.Session{Provider: "ftp"}); err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
}
