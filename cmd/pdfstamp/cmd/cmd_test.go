package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfstamp/internal/testpdf"
	"pdfstamp/stamping"
)

const catalogYAML = `
forms:
  - name: VBA-21-4502-ARE
    template: VBA-21-4502-ARE.pdf
    locators:
      - widget: namefirst1[0]
        field: first_name
      - widget: namelast1[0]
        field: last_name
      - field: branch
        values:
          Army: ARMY[0]
          Navy: NAVY[0]
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms.yaml"), []byte(catalogYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VBA-21-4502-ARE.pdf"), testpdf.VeteranForm(), 0644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := bytes.NewBuffer(nil)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readStamped(t *testing.T, path string) map[string]stamping.FieldInfo {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	infos, err := stamping.ReadFields(bytes.NewReader(data))
	require.NoError(t, err)
	m := make(map[string]stamping.FieldInfo)
	for _, info := range infos {
		m[info.Name] = info
	}
	return m
}

func hasWatermarks(t *testing.T, path string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ok, err := api.HasWatermarks(bytes.NewReader(data), conf)
	require.NoError(t, err)
	return ok
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	img.Set(10, 10, color.Black)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	path := filepath.Join(dir, "signature.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestStampCommand(t *testing.T) {
	dir := setup(t)
	values := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(values, []byte("first_name: jeff\nlast_name: smith\nbranch: Army\n"), 0644))
	output := filepath.Join(dir, "out.pdf")

	_, err := run(t, "stamp", "VBA-21-4502-ARE",
		"--catalog", filepath.Join(dir, "forms.yaml"),
		"--values", values,
		"--set", "last_name=jones",
		"--lock",
		"--output", output,
	)
	require.NoError(t, err)

	fields := readStamped(t, output)
	assert.Equal(t, "jeff", fields["namefirst1[0]"].Value)
	assert.Equal(t, "jones", fields["namelast1[0]"].Value)
	assert.Equal(t, "1", fields["ARMY[0]"].State)
	assert.True(t, fields["ARMY[0]"].ReadOnly)
}

func TestStampCommandStrict(t *testing.T) {
	dir := setup(t)
	output := filepath.Join(dir, "out.pdf")

	_, err := run(t, "stamp", "VBA-21-4502-ARE",
		"--catalog", filepath.Join(dir, "forms.yaml"),
		"--set", "branch=Coast Guard",
		"--strict",
		"--output", output,
	)
	var mappingErr *stamping.ValueMappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.NoFileExists(t, output)
}

func TestStampCommandImage(t *testing.T) {
	dir := setup(t)
	imagePath := writePNG(t, dir)
	output := filepath.Join(dir, "out.pdf")

	_, err := run(t, "stamp", "VBA-21-4502-ARE",
		"--catalog", filepath.Join(dir, "forms.yaml"),
		"--set", "first_name=jeff",
		"--image", "namelast1[0]@0="+imagePath,
		"--output", output,
	)
	require.NoError(t, err)
	assert.Equal(t, "jeff", readStamped(t, output)["namefirst1[0]"].Value)
	assert.True(t, hasWatermarks(t, output))

	_, err = run(t, "stamp", "VBA-21-4502-ARE",
		"--catalog", filepath.Join(dir, "forms.yaml"),
		"--image", "namelast1[0]",
		"--output", output,
	)
	assert.Error(t, err)
}

func TestReadImages(t *testing.T) {
	imagePath := writePNG(t, t.TempDir())

	images, err := readImages([]string{"signature[0]@1=" + imagePath, "initials[0]=" + imagePath})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "signature[0]", images[0].WidgetID)
	assert.Equal(t, 1, images[0].PageIndex)
	assert.Equal(t, "initials[0]", images[1].WidgetID)
	assert.Equal(t, 0, images[1].PageIndex)
	assert.NotEmpty(t, images[0].Data)

	for _, arg := range []string{"signature[0]@last=" + imagePath, "signature[0]@-1=" + imagePath, "=" + imagePath} {
		_, err := readImages([]string{arg})
		assert.Error(t, err, arg)
	}
}

func TestStampCommandUnknownForm(t *testing.T) {
	dir := setup(t)
	_, err := run(t, "stamp", "VBA-21-526EZ-ARE",
		"--catalog", filepath.Join(dir, "forms.yaml"),
		"--output", filepath.Join(dir, "out.pdf"),
	)
	assert.Error(t, err)
}

func TestFieldsCommand(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "fields", filepath.Join(dir, "VBA-21-4502-ARE.pdf"))
	require.NoError(t, err)

	assert.Contains(t, out, "PAGE")
	assert.Contains(t, out, "namefirst1[0]")
	assert.Contains(t, out, "ARMY[0]")
	assert.Contains(t, out, "Off")
}

func TestLabelCommand(t *testing.T) {
	dir := setup(t)
	output := filepath.Join(dir, "labelled.pdf")
	_, err := run(t, "label", filepath.Join(dir, "VBA-21-4502-ARE.pdf"), "--output", output)
	require.NoError(t, err)
	assert.Len(t, readStamped(t, output), 4)
	assert.True(t, hasWatermarks(t, output))
	assert.False(t, hasWatermarks(t, filepath.Join(dir, "VBA-21-4502-ARE.pdf")))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
