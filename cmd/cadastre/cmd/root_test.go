package cmd

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanot/cadastre/internal/roi"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeWorkingFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	configTOML := `[META]
DOL_Office = "Mae Sot"
COLUMN_SPEC = ["MRK_DOL", "N", "E"]

[Deed]
Survey_Type = "RTK"
EPSG = 32647
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(configTOML), 0o644))

	markup := `<table>
<tr><th>MRK_DOL</th><th>N</th><th>E</th></tr>
<tr><td>s1</td><td>811000.000</td><td>711000.000</td></tr>
<tr><td>s2</td><td>811000.000</td><td>711100.000</td></tr>
<tr><td>s3</td><td>811100.000</td><td>711100.000</td></tr>
</table>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d01_table.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d01_tbl1.md"), []byte(markup), 0o644))
	return dir
}

func TestRootShowsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "cadastre")
	assert.Contains(t, out, "extract")
}

func TestListCommand(t *testing.T) {
	dir := writeWorkingFolder(t)

	out, err := execute(t, "list", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "d01_table.jpg")
	assert.Contains(t, out, "markups=1")
	assert.Contains(t, out, "stages=---")
}

func TestExtractAndTransformCommands(t *testing.T) {
	dir := writeWorkingFolder(t)

	out, err := execute(t, "extract", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "extracted 1 document(s)")
	assert.FileExists(t, filepath.Join(dir, "d01_OCR.toml"))

	out, err = execute(t, "list", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "stages=R--")

	out, err = execute(t, "transform", dir, "--prefix", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "transformed 1 document(s)")
	assert.FileExists(t, filepath.Join(dir, "d01_W84UTM.toml"))
	assert.FileExists(t, filepath.Join(dir, "run_I75UTM.geojson"))
	assert.FileExists(t, filepath.Join(dir, "run_W84UTM.geojson"))
}

func TestExtractWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d01_table.jpg"), []byte("x"), 0o644))

	_, err := execute(t, "extract", dir)
	assert.Error(t, err)
}

func TestCropCommand(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "deed.jpg")
	require.NoError(t, imaging.Save(imaging.New(200, 100, color.NRGBA{A: 255}), imgPath))
	require.NoError(t, roi.Save(imgPath, &roi.Rect{
		SourceImage: "deed.jpg",
		XMin:        10, YMin: 20, XMax: 110, YMax: 70,
		Width: 100, Height: 50,
	}))

	out, err := execute(t, "crop", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "deed_table.jpg")
	assert.FileExists(t, filepath.Join(dir, "deed_table.jpg"))

	// A single scan path works too.
	require.NoError(t, os.Remove(filepath.Join(dir, "deed_table.jpg")))
	_, err = execute(t, "crop", imgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "deed_table.jpg"))
}

func TestCropWithoutRectangles(t *testing.T) {
	_, err := execute(t, "crop", t.TempDir())
	assert.Error(t, err)
}
