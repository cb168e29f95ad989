package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.log")
	l := NewIsolatedLogger(path)

	l.Debug("Test", "dropped below info", nil)
	l.Info("Test", "turn completed", map[string]interface{}{"session_id": "abc"})
	l.Error("Test", "turn failed", map[string]interface{}{"error": "boom"})
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "turn completed", lines[0]["message"])
	assert.Equal(t, "Test", lines[0]["module"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error_ref"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Info("Test", "nothing", nil)
		l.Warn("Test", "nothing", map[string]interface{}{"k": 1})
	})
}
