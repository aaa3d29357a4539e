package config

import (
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

// Validate checks structural problems in cfg. Missing directories on disk are
// not checked here; a missing layout only fails the pages that use it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ferrors.ConfigError("configuration is nil").Build()
	}
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{v.validateDirs, v.validateStaging, v.validateRender, v.validatePageLayouts} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validateDirs() error {
	dirs := map[string]string{
		"pages":   cv.config.Pages,
		"layouts": cv.config.Layouts,
	}
	for field, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			return ferrors.ConfigError("directory must not be empty").WithContext("field", field).Build()
		}
		if filepath.IsAbs(dir) {
			return ferrors.ConfigError("directory must be relative to input").
				WithContext("field", field).
				WithContext("value", dir).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateStaging() error {
	if NormalizeStagingMode(string(cv.config.Staging)) == "" {
		return ferrors.ConfigError("unknown staging mode (want memory or disk)").
			WithContext("value", string(cv.config.Staging)).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateRender() error {
	if cv.config.Render.Timeout < 0 {
		return ferrors.ConfigError("render.timeout must not be negative").Build()
	}
	if cv.config.Watch.Interval < 0 || cv.config.Watch.Debounce < 0 {
		return ferrors.ConfigError("watch durations must not be negative").Build()
	}
	return nil
}

func (cv *configurationValidator) validatePageLayouts() error {
	for dir, layout := range cv.config.PageLayouts {
		if strings.TrimSpace(layout) == "" {
			return ferrors.ConfigError("page_layouts entry has an empty layout name").
				WithContext("dir", dir).
				Build()
		}
	}
	return nil
}
