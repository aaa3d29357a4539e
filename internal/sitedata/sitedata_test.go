package sitedata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir_KeysByBaseName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site.yml"), "title: Example\nyear: 2024\n")
	writeFile(t, filepath.Join(dir, "nav.json"), `[{"href":"/","label":"Home"}]`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	data, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Len(t, data, 2)
	assert.Equal(t, map[string]any{"title": "Example", "year": 2024}, data["site"])
	nav, ok := data["nav"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"href": "/", "label": "Home"}, nav[0])
}

func TestLoadDir_MissingDirectoryIsEmpty(t *testing.T) {
	data, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLoadDir_BadFileIsDataError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.json"), "{")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Equal(t, ferrors.CategoryData, ferrors.GetCategory(err))
}

func TestLoad_InlineValuesWin(t *testing.T) {
	input := t.TempDir()
	writeFile(t, filepath.Join(input, "data", "site.yaml"), "title: From file\n")

	cfg, err := config.Parse([]byte("input: " + input + "\ndata_values:\n  site: inline\n  extra: 1\n"))
	require.NoError(t, err)

	data, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, "inline", data["site"])
	assert.Equal(t, 1, data["extra"])
	assert.NotContains(t, data, KeyRevision, "temp dir is not a repository")
}

func TestLoad_AddsRevision(t *testing.T) {
	input := t.TempDir()
	repo, err := git.PlainInit(input, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(input, "pages", "index.html"), "hi")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("pages/index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("input: " + input + "\n"))
	require.NoError(t, err)

	data, err := Load(cfg)
	require.NoError(t, err)
	rev, ok := data[KeyRevision].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, hash.String(), rev["commit"])
	assert.Equal(t, hash.String()[:7], rev["short"])
	assert.Equal(t, "tester", rev["author"])
}

func TestDecodeFile_JSONNumbersKeepPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.json")
	writeFile(t, path, `{"big": 12345678901234567890}`)

	v, err := decodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["big"])
}
