package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/shellprep/config"
	"github.com/c360studio/shellprep/inject"
	"github.com/c360studio/shellprep/stream"
	"github.com/c360studio/shellprep/template"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tpl := filepath.Join(t.TempDir(), "injection.html")
	content := "<head-start>A</head-start><head-end>B</head-end><body-start>C</body-start><body-end>D</body-end>"
	require.NoError(t, os.WriteFile(tpl, []byte(content), 0644))

	cfg := config.DefaultConfig()
	cfg.Build.Template = tpl
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_FailsFastOnBadTemplate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.Template = filepath.Join(t.TempDir(), "missing.html")

	_, err := New(cfg, Options{Logger: quietLogger()})
	var notFound *template.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestNew_FailsOnInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Pattern = ""

	_, err := New(cfg, Options{Logger: quietLogger()})
	require.Error(t, err)
}

func TestApply_TransformsOnlyMatchingDocuments(t *testing.T) {
	p, err := New(testConfig(t), Options{Logger: quietLogger()})
	require.NoError(t, err)

	docs := []stream.Document{
		{Path: "css/app.css", Contents: []byte("body{}")},
		{Path: "index.html", Contents: []byte("<html><head></head><body></body></html>")},
		{Path: "views/main.html", Contents: []byte("<head>" + inject.CSPMarker + "</head>")},
	}

	out := p.Apply(docs)
	require.Len(t, out, 3)

	assert.Equal(t, "css/app.css", out[0].Path)
	assert.Equal(t, []byte("body{}"), out[0].Contents, "non-HTML passes byte-identical")

	assert.Equal(t, "<html><head>A B</head><body>C D</body></html>", string(out[1].Contents))

	assert.NotContains(t, string(out[2].Contents), inject.CSPMarker)
	assert.Contains(t, string(out[2].Contents), `<meta http-equiv="Content-Security-Policy"`)
}

func TestRun_WritesToDest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Src = t.TempDir()
	cfg.Build.Dest = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.Src, "index.html"),
		[]byte("<html><head></head><body></body></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.Src, "app.js"),
		[]byte("void 0"), 0644))

	p, err := New(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, p.Run())

	html, err := os.ReadFile(filepath.Join(cfg.Build.Dest, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><head>A B</head><body>C D</body></html>", string(html))

	js, err := os.ReadFile(filepath.Join(cfg.Build.Dest, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "void 0", string(js))

	// Source untouched when a destination is set.
	src, err := os.ReadFile(filepath.Join(cfg.Build.Src, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><head></head><body></body></html>", string(src))
}

func TestRun_InPlaceWhenNoDest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Src = t.TempDir()
	cfg.Build.Dest = ""

	path := filepath.Join(cfg.Build.Src, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<head></head>"), 0644))

	p, err := New(cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, p.Run())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<head>A B</head>", string(got))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Src = t.TempDir()
	cfg.Build.Dest = filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.Src, "index.html"),
		[]byte("<head></head>"), 0644))

	p, err := New(cfg, Options{Logger: quietLogger(), DryRun: true})
	require.NoError(t, err)
	require.NoError(t, p.Run())

	_, err = os.Stat(cfg.Build.Dest)
	assert.True(t, os.IsNotExist(err), "dry run must not create the destination")
}
