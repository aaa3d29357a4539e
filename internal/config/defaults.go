package config

import (
	"strings"
	"time"
)

const (
	LayoutExt          = ".html"
	DefaultNATSSubject = "panini.events"
	DefaultMetricsPath = "/metrics"
	DefaultDebounce    = 300 * time.Millisecond
)

// StagingMode selects how a page body is made addressable as the "body" partial.
type StagingMode string

const (
	StagingMemory StagingMode = "memory"
	StagingDisk   StagingMode = "disk"
)

// NormalizeStagingMode returns the canonical mode or "" if unknown.
func NormalizeStagingMode(raw string) StagingMode {
	switch StagingMode(strings.ToLower(strings.TrimSpace(raw))) {
	case StagingMemory:
		return StagingMemory
	case StagingDisk:
		return StagingDisk
	default:
		return ""
	}
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type pathsDefaultApplier struct{}

func (pathsDefaultApplier) Domain() string { return "paths" }

func (pathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.Input, ".")
	setIfEmpty(&cfg.Pages, "pages")
	setIfEmpty(&cfg.Layouts, "layouts")
	setIfEmpty(&cfg.Partials, "partials")
	setIfEmpty(&cfg.Data, "data")
	setIfEmpty(&cfg.Output, "dist")
	if cfg.PageLayouts == nil {
		cfg.PageLayouts = map[string]string{}
	}
	return nil
}

type renderDefaultApplier struct{}

func (renderDefaultApplier) Domain() string { return "render" }

func (renderDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Staging == "" {
		cfg.Staging = StagingMemory
	} else if m := NormalizeStagingMode(string(cfg.Staging)); m != "" {
		cfg.Staging = m
	}
	if cfg.Render.Concurrency < 0 {
		cfg.Render.Concurrency = 0
	}
	return nil
}

type observabilityDefaultApplier struct{}

func (observabilityDefaultApplier) Domain() string { return "observability" }

func (observabilityDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.Events.NATSSubject, DefaultNATSSubject)
	setIfEmpty(&cfg.Metrics.Path, DefaultMetricsPath)
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	return nil
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		pathsDefaultApplier{},
		renderDefaultApplier{},
		observabilityDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func setIfEmpty(dst *string, value string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = value
	}
}
