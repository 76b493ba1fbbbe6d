package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cleanmachine/app/config"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()

	di := do.New()
	do.ProvideValue(di, cfg)

	svc, err := New(di)
	require.NoError(t, err)

	return svc
}

func TestExportAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transcripts.jsonl")
	svc := newService(t, &config.Config{
		Transcript: config.Transcript{Enabled: true, Path: path},
	})

	require.NoError(t, svc.Export(map[string]string{"mode": "free"}))
	require.NoError(t, svc.Export(map[string]string{"mode": "upsell"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"mode":"free"`)
	assert.Contains(t, lines[1], `"mode":"upsell"`)
}

func TestExportDisabledIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.jsonl")
	svc := newService(t, &config.Config{
		Transcript: config.Transcript{Enabled: false, Path: path},
	})

	require.NoError(t, svc.Export(map[string]string{"mode": "free"}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
