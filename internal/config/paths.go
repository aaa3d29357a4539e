package config

import "path/filepath"

// PagesRoot is the directory holding page sources.
func (c *Config) PagesRoot() string { return filepath.Join(c.Input, c.Pages) }

// LayoutsRoot is the directory holding layout templates.
func (c *Config) LayoutsRoot() string { return filepath.Join(c.Input, c.Layouts) }

// PartialsRoot is the directory searched for bare partial names.
func (c *Config) PartialsRoot() string { return filepath.Join(c.Input, c.Partials) }

// DataRoot is the directory holding global data files.
func (c *Config) DataRoot() string { return filepath.Join(c.Input, c.Data) }

// StagingRoot is where disk staging writes page bodies.
func (c *Config) StagingRoot() string { return filepath.Join(c.Input, StagingDirName) }

// LayoutPath returns the template path for a layout name.
func (c *Config) LayoutPath(name string) string {
	return filepath.Join(c.LayoutsRoot(), name+LayoutExt)
}
