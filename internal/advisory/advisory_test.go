package advisory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advisories.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromJSONL(t *testing.T) {
	path := writeFile(t, `# local advisories
{"title": "Heatwave Alert", "content": "Drink water and stay indoors at noon.", "category": "seasonal"}

{"title": "Polio Drive", "content": "Two drops every time."}
`)

	records, err := LoadFromJSONL(path, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Heatwave Alert", records[0].Title)
	assert.Equal(t, "seasonal", records[0].Category)
	assert.Equal(t, "", records[1].Category)
}

func TestLoadFromJSONLSkipsBadLines(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	path := writeFile(t, `{"title": "Good", "content": "Fine."}
{not json}
{"title": "", "content": "no title"}
`)

	records, err := LoadFromJSONL(path, zap.New(core))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["line"])
}

func TestLoadFromJSONLErrors(t *testing.T) {
	_, err := LoadFromJSONL(filepath.Join(t.TempDir(), "missing.jsonl"), nil)
	assert.Error(t, err)

	_, err = LoadFromJSONL(writeFile(t, "\n{bad}\n"), nil)
	assert.Error(t, err)
}
