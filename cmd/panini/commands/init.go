package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force    bool `help:"Overwrite existing configuration file"`
	Scaffold bool `help:"Also create a starter input tree next to the configuration"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Printf("Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	if i.Scaffold {
		cfg, err := config.Load(root.Config)
		if err != nil {
			return err
		}
		if err := scaffold(cfg); err != nil {
			return err
		}
		fmt.Printf("Created starter site in %s\n", cfg.Input)
	}
	return nil
}

var starterFiles = map[string]func(*config.Config) string{
	"default.html": func(c *config.Config) string { return filepath.Join(c.LayoutsRoot(), "default.html") },
	"header.html":  func(c *config.Config) string { return filepath.Join(c.PartialsRoot(), "header.html") },
	"index.html":   func(c *config.Config) string { return filepath.Join(c.PagesRoot(), "index.html") },
}

var starterContent = map[string]string{
	"default.html": "<!doctype html>\n<html>\n<head><title>{{ title }}</title></head>\n<body>\n{% include \"header\" %}\n{% include \"body\" %}\n</body>\n</html>\n",
	"header.html":  "<nav><a href=\"{{ root }}index.html\"{% if ifpage(\"index\") %} class=\"active\"{% endif %}>Home</a></nav>\n",
	"index.html":   "---\ntitle: Welcome\n---\n<h1>{{ title }}</h1>\n<p>Rendered for {{ site }}.</p>\n",
}

func scaffold(cfg *config.Config) error {
	for name, target := range starterFiles {
		path := target(cfg)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create scaffold directory").WithContext("path", path).Build()
		}
		if err := os.WriteFile(path, []byte(starterContent[name]), 0o644); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write scaffold file").WithContext("path", path).Build()
		}
	}
	return nil
}
