package alphabet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLabelFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildFromLabelFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := writeLabelFile(t, dir, "train.csv", "/data/a.jpg;|A|B|1|\n/data/b.jpg;|B|C|\n")
	p2 := writeLabelFile(t, dir, "val.csv", "/data/c.jpg;|C|7|\n\n")

	a, err := BuildFromLabelFiles([]string{p1, p2}, ";", "|")
	require.NoError(t, err)

	// Distinct units {1, 7, A, B, C} sorted, plus blank.
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, []string{"1", "7", "A", "B", "C"}, a.Units())

	code, err := a.Encode("1")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestBuildFromLabelFiles_Deterministic(t *testing.T) {
	dir := t.TempDir()
	p := writeLabelFile(t, dir, "train.csv", "/a.jpg;|Z|А|9|\n")

	a1, err := BuildFromLabelFiles([]string{p}, ";", "|")
	require.NoError(t, err)
	a2, err := BuildFromLabelFiles([]string{p}, ";", "|")
	require.NoError(t, err)
	assert.Equal(t, a1.Units(), a2.Units())
}

func TestBuildFromLabelFiles_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := BuildFromLabelFiles(nil, ";", "|")
	require.Error(t, err)

	missing := filepath.Join(dir, "missing.csv")
	_, err = BuildFromLabelFiles([]string{missing}, ";", "|")
	require.Error(t, err)

	bad := writeLabelFile(t, dir, "bad.csv", "no-delimiter-here\n")
	_, err = BuildFromLabelFiles([]string{bad}, ";", "|")
	require.Error(t, err)

	empty := writeLabelFile(t, dir, "empty.csv", "")
	_, err = BuildFromLabelFiles([]string{empty}, ";", "|")
	require.Error(t, err)
}
