package command

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/database"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/objects"
)

// memStore is a single-page in-memory bucket.
type memStore struct {
	keys []string
}

func (m *memStore) ListPage(_ context.Context, in interfaces.ListPageInput) (*interfaces.ListPage, error) {
	page := &interfaces.ListPage{}
	for _, k := range m.keys {
		if strings.HasPrefix(k, in.Prefix) {
			page.Objects = append(page.Objects, &interfaces.ObjectInfo{
				Key:          k,
				Bucket:       in.Bucket,
				Size:         2048,
				LastModified: time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC),
				ETag:         "etag-" + k,
				StorageClass: "STANDARD",
			})
		}
	}
	return page, nil
}

func (m *memStore) DeleteObjects(_ context.Context, _ string, keys []string) (*interfaces.DeleteResult, error) {
	gone := make(map[string]bool)
	for _, k := range keys {
		gone[k] = true
	}
	var kept []string
	for _, k := range m.keys {
		if !gone[k] {
			kept = append(kept, k)
		}
	}
	m.keys = kept
	return &interfaces.DeleteResult{Deleted: keys}, nil
}

func (m *memStore) Close() error { return nil }

type harness struct {
	store    *memStore
	sessions []config.Session
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	dir      string
}

func newHarness(t *testing.T, keys ...string) *harness {
	return &harness{store: &memStore{keys: keys}, dir: t.TempDir()}
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	app := NewApp(&h.stdout, &h.stderr, WithOpener(func(_ context.Context, sess config.Session) (interfaces.ObjectStore, error) {
		h.sessions = append(h.sessions, sess)
		return h.store, nil
	}))
	return app.Run(append([]string{"dasida"}, args...))
}

func TestListObjects_PrintsMatchingObjects(t *testing.T) {
	h := newHarness(t, "a/1.csv", "a/2.csv", "a/2.txt", "b/1.csv")

	require.NoError(t, h.run("list-objects", "-b", "bkt", "--prefix", "a/", "--pattern", "*.csv"))

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "ls bkt/a/*.csv\n"), out)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "a/1.csv")
	assert.Contains(t, out, "a/2.csv")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "2022-03-04T05:06:07Z")
	assert.NotContains(t, out, "a/2.txt")
	assert.NotContains(t, out, "b/1.csv")
}

func TestListObjects_UsesProfileFlag(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--profile", "ops", "list-objects", "-b", "bkt"))

	require.Len(t, h.sessions, 1)
	assert.Equal(t, config.AWS, h.sessions[0].Provider)
	assert.Equal(t, "ops", h.sessions[0].AWS.Profile)
}

func TestListObjects_FlagsAfterCommandName(t *testing.T) {
	h := newHarness(t, "a/1.csv")

	require.NoError(t, h.run("--profile", "global", "list-objects", "-b", "bkt", "--profile", "prod", "--log-level", "debug"))

	require.Len(t, h.sessions, 1)
	assert.Equal(t, "prod", h.sessions[0].AWS.Profile)
	assert.Contains(t, h.stderr.String(), "level=DEBUG")
}

func TestDeleteObjects_FlagsAfterCommandName(t *testing.T) {
	h := newHarness(t, "a/1.csv")

	require.NoError(t, h.run("delete-objects", "-b", "bkt", "--profile", "prod", "--log-level", "debug"))

	require.Len(t, h.sessions, 1)
	assert.Equal(t, "prod", h.sessions[0].AWS.Profile)
	assert.Contains(t, h.stderr.String(), "level=DEBUG")
	assert.Empty(t, h.store.keys)
}

func TestCommandLogLevelIsValidated(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("list-objects", "-b", "bkt", "--log-level", "loud"))
	assert.Empty(t, h.sessions)
}

func TestExplicitConfigMustExist(t *testing.T) {
	h := newHarness(t)

	err := h.run("--config", filepath.Join(h.dir, "missing.json"), "list-objects", "-b", "bkt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
	assert.Empty(t, h.sessions)
}

func TestListObjects_RequiresBucket(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("list-objects"))
}

func TestDeleteObjects_DeletesAndJournals(t *testing.T) {
	h := newHarness(t, "a/1.csv", "a/2.csv", "a/2.txt")
	journal := filepath.Join(h.dir, "journal.db")

	require.NoError(t, h.run("--journal", journal, "delete-objects", "-b", "bkt", "--prefix", "a/", "--pattern", "*.csv"))

	assert.Equal(t, "total 2 objects are deleted from bkt/a/*.csv!\n", h.stdout.String())
	assert.Equal(t, []string{"a/2.txt"}, h.store.keys)

	db, err := database.NewDB(journal)
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.ListDeleteRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "bkt", runs[0].Bucket)
	assert.Equal(t, 2, runs[0].DeletedCount)

	require.NoError(t, h.run("--journal", journal, "history"))
	assert.Contains(t, h.stdout.String(), "bkt")

	require.NoError(t, h.run("--journal", journal, "history", "--run", "1"))
	assert.Equal(t, "deleted a/1.csv\ndeleted a/2.csv\n", h.stdout.String())
}

func TestDeleteObjects_NothingMatchedFails(t *testing.T) {
	h := newHarness(t, "a/1.csv")

	err := h.run("delete-objects", "-b", "bkt", "--prefix", "nope/")
	require.ErrorIs(t, err, objects.ErrNotFound)
	assert.Contains(t, err.Error(), "bkt/nope/")
	assert.Equal(t, []string{"a/1.csv"}, h.store.keys)
}

func TestHistory_RequiresJournal(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("history"))
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("--log-level", "loud", "list-objects", "-b", "bkt"))
}

func TestProviderWithoutConfigFails(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("--provider", "minio", "list-objects", "-b", "bkt"))
}

func TestEnvWriteRead(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(h.dir, ".env")

	require.NoError(t, h.run("env", "write", "-f", file, "B=2", "A=x=y"))
	require.NoError(t, h.run("env", "write", "-f", file, "--merge", "C=3"))
	require.NoError(t, h.run("env", "read", "-f", file))

	assert.Equal(t, "A=x=y\nB=2\nC=3\n", h.stdout.String())
}

func TestConfigInitAndProviderSelection(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "dasida.json")

	app := func(args ...string) error {
		h.stdout.Reset()
		a := NewApp(&h.stdout, &h.stderr, WithOpener(func(_ context.Context, sess config.Session) (interfaces.ObjectStore, error) {
			h.sessions = append(h.sessions, sess)
			return h.store, nil
		}))
		return a.Run(append([]string{"dasida", "--config", cfgPath}, args...))
	}

	require.NoError(t, app("config", "init"))
	assert.Error(t, app("config", "init"), "init must not overwrite without --force")

	require.NoError(t, app("--provider", "minio", "list-objects", "-b", "bkt"))
	require.Len(t, h.sessions, 1)
	assert.Equal(t, config.MINIO, h.sessions[0].Provider)
	assert.Equal(t, "localhost:9000", h.sessions[0].MinIO.Endpoint)
}

func TestConfigCheck(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "dasida.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"defaultProvider": "local",
		"providers": [
			{"id": "local", "type": "minio", "minio": {"endpoint": "localhost:9000", "accessKey": "k", "secretKey": "s"}},
			{"id": "edge", "type": "minio", "minio": {"endpoint": "127.0.0.1:9001", "accessKey": "k", "secretKey": "s"}}
		]
	}`), 0644))

	app := NewApp(&h.stdout, &h.stderr)
	require.NoError(t, app.Run([]string{"dasida", "--config", cfgPath, "config", "check"}))
	assert.Equal(t, "edge\nlocal (default)\n", h.stdout.String())
}

// emptyBucketServer answers S3 ListObjectsV2 with an empty listing.
func emptyBucketServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>bkt</Name><KeyCount>0</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated></ListBucketResult>`))
	}))
}

func TestConfigCheck_ListsBucket(t *testing.T) {
	h := newHarness(t)

	up := emptyBucketServer()
	defer up.Close()
	down := emptyBucketServer()
	down.Close()

	cfgPath := filepath.Join(h.dir, "dasida.json")
	cfg := fmt.Sprintf(`{
		"defaultProvider": "local",
		"providers": [
			{"id": "local", "type": "minio", "minio": {"endpoint": %q, "accessKey": "k", "secretKey": "s", "region": "us-east-1", "maxRetries": 1}},
			{"id": "edge", "type": "minio", "minio": {"endpoint": %q, "accessKey": "k", "secretKey": "s", "region": "us-east-1", "maxRetries": 1}}
		]
	}`, strings.TrimPrefix(up.URL, "http://"), strings.TrimPrefix(down.URL, "http://"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	app := NewApp(&h.stdout, &h.stderr)
	err := app.Run([]string{"dasida", "--config", cfgPath, "config", "check", "--bucket", "bkt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 providers")

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "edge: "), lines[0])
	assert.NotEqual(t, "edge: ok", lines[0])
	assert.Equal(t, "local (default): ok", lines[1])
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "b", displayPath("b", "", ""))
	assert.Equal(t, "b/p/", displayPath("b", "p/", ""))
	assert.Equal(t, "b/*.csv", displayPath("b", "", "*.csv"))
}
