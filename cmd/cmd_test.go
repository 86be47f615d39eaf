package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against an in-memory store.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--storage", "memory"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jhvocab (devel)\n", out)
}

func TestStats(t *testing.T) {
	out, err := execute(t, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "lesson7-1")
	assert.Contains(t, out, "verb1")
	assert.Contains(t, out, "Overall level: 0")
	assert.Contains(t, out, "shadowPlantEgg.png")
}

func TestStatsMonsterNeedsHatchedEgg(t *testing.T) {
	t.Cleanup(func() { _ = statsCmd.Flags().Set("monster", "") })

	_, err := execute(t, "stats", "--monster", "plantSlime_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hatches")
}

func TestResetUnknownQuiz(t *testing.T) {
	_, err := execute(t, "reset", "lesson99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown quiz")
}

func TestReset(t *testing.T) {
	out, err := execute(t, "reset", "lesson7-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Question history of lesson7-1 cleared")
	assert.Contains(t, out, "Level and XP of lesson7-1 reset")
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	doc := `{"quizId": "lesson7-1", "questions": [
		{"id": 1, "jp": "駅", "en": "station"},
		{"jp": "病院", "en": "hospital"},
		{"id": 3, "jp": "", "en": "library"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "check", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Format:     json")
	assert.Contains(t, out, "Namespace:  lesson7_1")
	assert.Contains(t, out, "Questions:  2")
	assert.Contains(t, out, "2 issues")
}
