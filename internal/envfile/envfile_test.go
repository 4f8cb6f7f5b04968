package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	env := map[string]string{
		"AWS_PROFILE": "ops",
		"PORT":        "8080",
		"DSN":         "user=a password=b",
	}

	require.NoError(t, Write(env, path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestRead_PlainLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.env")
	require.NoError(t, os.WriteFile(path, []byte("key_1=value_1\nkey_2=a=b\n"), 0644))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key_1": "value_1", "key_2": "a=b"}, got)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParsePairs(t *testing.T) {
	env, err := ParsePairs([]string{"A=1", "B=x=y", "C="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, env)

	_, err = ParsePairs([]string{"novalue"})
	assert.Error(t, err)

	_, err = ParsePairs([]string{"=1"})
	assert.Error(t, err)
}
