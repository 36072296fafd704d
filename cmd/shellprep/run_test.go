package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/shellprep/config"
)

func TestBuildFlags_OverlayMerge(t *testing.T) {
	flags := &buildFlags{
		src:        "dist",
		source:     "http://localhost:8100",
		connectSrc: []string{"wss://api.example.com"},
	}

	cfg := config.DefaultConfig()
	cfg.Merge(flags.overlay())

	assert.Equal(t, "dist", cfg.Build.Src)
	assert.Equal(t, "http://localhost:8100", cfg.CSP.Source)
	assert.Equal(t, []string{"wss://api.example.com"}, cfg.CSP.ConnectSrc)
	// Unset flags leave the loaded values alone.
	assert.Equal(t, "injection.html", cfg.Build.Template)
	assert.Equal(t, "**/*.html", cfg.Build.Pattern)
}

func TestWatchDestValid(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "www")

	require.Error(t, watchDestValid(src, ""), "in-place watch is rejected")
	require.Error(t, watchDestValid(src, src))
	require.Error(t, watchDestValid(src, filepath.Join(src, "out")))

	assert.NoError(t, watchDestValid(src, filepath.Join(root, "prepared")))
	assert.NoError(t, watchDestValid(src, root))
}
