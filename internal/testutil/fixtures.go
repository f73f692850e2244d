package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DatasetFixture is a generated on-disk dataset: plate images plus the
// formatted label CSV referencing them.
type DatasetFixture struct {
	Dir    string
	CSV    string
	Plates []string
}

// WriteDatasetFixture generates one plate image per text and a
// path;|A|B|1| label CSV covering them.
func WriteDatasetFixture(t *testing.T, plates []string, csvDelim, splitDelim string) DatasetFixture {
	t.Helper()

	dir := t.TempDir()
	var lines []string
	for i, plate := range plates {
		name := fmt.Sprintf("plate%d.png", i)
		path := SavePlateImage(t, dir, name, DefaultPlateImageConfig(plate))

		var sb strings.Builder
		sb.WriteString(splitDelim)
		for _, r := range plate {
			sb.WriteRune(r)
			sb.WriteString(splitDelim)
		}
		lines = append(lines, path+csvDelim+sb.String())
	}

	csvPath := filepath.Join(dir, "labels.csv")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	return DatasetFixture{Dir: dir, CSV: csvPath, Plates: plates}
}

// WriteRawAnnotations writes a raw comma-separated annotation CSV with the
// image_path and lp columns the prepare stage consumes.
func WriteRawAnnotations(t *testing.T, dir string, plates map[string]string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("image_path,lp\n")
	for path, plate := range plates {
		fmt.Fprintf(&sb, "%s,%s\n", path, plate)
	}

	csvPath := filepath.Join(dir, "trainVal.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sb.String()), 0o600))
	return csvPath
}
