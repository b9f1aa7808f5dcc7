package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/errors"
)

func TestExpandString(t *testing.T) {
	t.Setenv("VOCAB_DB_PASS", "s3cret")
	t.Setenv("VOCAB_EMPTY", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "literal", input: "hunter2", want: "hunter2"},
		{name: "variable", input: "${VOCAB_DB_PASS}", want: "s3cret"},
		{name: "embedded", input: "user:${VOCAB_DB_PASS}", want: "user:s3cret"},
		{name: "fallback unused", input: "${VOCAB_DB_PASS:-other}", want: "s3cret"},
		{name: "fallback used", input: "${VOCAB_EMPTY:-other}", want: "other"},
		{name: "empty fallback", input: "${VOCAB_UNSET_X:-}", want: ""},
		{name: "missing", input: "${VOCAB_UNSET_X}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "VOCAB_UNSET_X")
				assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeSecret(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestReadFile(t *testing.T) {
	got, err := ReadFile(writeSecret(t, "s3cret\n", 0o600))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = ReadFile(writeSecret(t, " spaced \r\n", 0o644))
	require.NoError(t, err, "permissive files only warn")
	assert.Equal(t, " spaced ", got)
}

func TestReadFileRejects(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "empty path", path: func(*testing.T) string { return "" }},
		{name: "missing", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }},
		{name: "directory", path: func(t *testing.T) string { return t.TempDir() }},
		{name: "empty file", path: func(t *testing.T) string { return writeSecret(t, "\n", 0o600) }},
		{name: "too large", path: func(t *testing.T) string {
			return writeSecret(t, strings.Repeat("x", maxSecretFileSize+1), 0o600)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestResolvePrefersFile(t *testing.T) {
	t.Setenv("VOCAB_MQTT_PASS", "from-env")
	path := writeSecret(t, "from-file", 0o600)

	got, err := Resolve(path, "${VOCAB_MQTT_PASS}")
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	got, err = Resolve("", "${VOCAB_MQTT_PASS}")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = Resolve("", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
