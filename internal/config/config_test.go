package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("input: src\n"))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Input)
	assert.Equal(t, "pages", cfg.Pages)
	assert.Equal(t, "layouts", cfg.Layouts)
	assert.Equal(t, "partials", cfg.Partials)
	assert.Equal(t, "data", cfg.Data)
	assert.Equal(t, StagingMemory, cfg.Staging)
	assert.Equal(t, DefaultNATSSubject, cfg.Events.NATSSubject)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.NotNil(t, cfg.PageLayouts)
}

func TestParse_ReadsAllSections(t *testing.T) {
	cfg, err := Parse([]byte(`
input: site
pages: content
layouts: tpl
staging: DISK
page_layouts:
  blog: post
  docs/api: reference
data_values:
  title: Example
render:
  concurrency: 4
  timeout: 5s
watch:
  interval: 1m
`))
	require.NoError(t, err)

	assert.Equal(t, StagingDisk, cfg.Staging)
	assert.Equal(t, map[string]string{"blog": "post", "docs/api": "reference"}, cfg.PageLayouts)
	assert.Equal(t, "Example", cfg.DataValues["title"])
	assert.Equal(t, 4, cfg.Render.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Render.Timeout)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
	assert.Equal(t, filepath.Join("site", "content"), cfg.PagesRoot())
	assert.Equal(t, filepath.Join("site", "tpl", "post.html"), cfg.LayoutPath("post"))
	assert.Equal(t, filepath.Join("site", ".panini"), cfg.StagingRoot())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("input: [unclosed"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_ResolvesInputRelativeToConfigAndExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PANINI_TEST_SITE", "Expanded")
	path := filepath.Join(dir, "panini.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: src\ndata_values:\n  site: ${PANINI_TEST_SITE}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Input)
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.Output)
	assert.Equal(t, "Expanded", cfg.DataValues["site"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInit_WritesLoadableConfigAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panini.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "post", cfg.PageLayouts["blog"])

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.NoError(t, Init(path, true))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Parse([]byte("input: src\n"))
		require.NoError(t, err)
		return cfg
	}

	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"absolute pages dir", func(c *Config) { c.Pages = "/abs/pages" }},
		{"unknown staging", func(c *Config) { c.Staging = "tmpfs" }},
		{"negative timeout", func(c *Config) { c.Render.Timeout = -time.Second }},
		{"empty override layout", func(c *Config) { c.PageLayouts["blog"] = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}
