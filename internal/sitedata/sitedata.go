// Package sitedata loads the global data layer shared by every page.
package sitedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

// KeyRevision is the global data key holding the input's git revision.
const KeyRevision = "revision"

// Load builds the global data map for cfg. Every *.yml, *.yaml and *.json
// file directly inside the data directory becomes one key named after the
// file. Inline data_values are layered on top, and the git revision of the
// input is added unless a key of that name already exists. A missing data
// directory is not an error.
func Load(cfg *config.Config) (map[string]any, error) {
	data, err := LoadDir(cfg.DataRoot())
	if err != nil {
		return nil, err
	}
	maps.Copy(data, cfg.DataValues)
	if _, taken := data[KeyRevision]; !taken {
		if rev, ok := Revision(cfg.Input); ok {
			data[KeyRevision] = rev
		}
	}
	return data, nil
}

// LoadDir reads the data files in dir. Files are processed in lexical order,
// so with "a.yml" and "a.json" both present the later name wins.
func LoadDir(dir string) (map[string]any, error) {
	data := map[string]any{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryData, "read data directory").
			WithContext("path", dir).
			Build()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isDataFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		value, err := decodeFile(path)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryData, "decode data file").
				WithContext("path", path).
				Fatal().
				Build()
		}
		data[strings.TrimSuffix(name, filepath.Ext(name))] = value
	}
	return data, nil
}

func isDataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

func decodeFile(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		return value, nil
	}
	if err := yaml.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}
