package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	l := NewIsolatedLogger(path)

	l.Info("Events", "BIO_GENERATED", map[string]interface{}{"donor_id": "d-1"})
	l.Error("BioService", "search failed", map[string]interface{}{"error": errors.New("timeout")})
	l.Debug("Events", "dropped below info", nil)
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "BIO_GENERATED", first["message"])
	assert.Equal(t, "Events", first["module"])
	assert.Equal(t, "d-1", first["details"].(map[string]interface{})["donor_id"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "timeout", second["details"].(map[string]interface{})["error"])
}
