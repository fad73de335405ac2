package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
	"github.com/sidkik/mirrord/pkg/sync"
)

const (
	// InitialMirrorConfigVersion is the first version of the mirror config.
	// Config files that do not specify a version default to this version.
	InitialMirrorConfigVersion = "v1alpha1"

	// SupportedMirrorConfigVersion is the version of the mirror config
	// understood by this binary.
	SupportedMirrorConfigVersion = "v1alpha1"

	// DefaultWorkers is the number of concurrent file copies used when none
	// is configured.
	DefaultWorkers = 1
)

// Mirror describes a source tree, the replica that's kept in sync with it,
// and how often it's synced.
type Mirror struct {
	Version string `json:"version,omitempty"`

	// Source and Replica are the roots of the mirrored trees. Required.
	Source  string `json:"source"`
	Replica string `json:"replica"`

	// Interval is the number of seconds between the start of each pass.
	// Required.
	Interval int `json:"interval"`

	// Log is either a log file, or a directory in which a dated log file is
	// created. Required.
	Log string `json:"log"`

	Digest  string `json:"digest,omitempty"`
	Workers int    `json:"workers,omitempty"`
}

func (m Mirror) getVersion() string {
	return m.Version
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseMirror parses the mirror config at `path`. Relative paths within the
// file are evaluated relative to the directory containing it.
func ParseMirror(path string) (Mirror, error) {
	config := Mirror{Version: InitialMirrorConfigVersion}
	if err := parseConfig(path, &config, SupportedMirrorConfigVersion); err != nil {
		return Mirror{}, err
	}

	for _, p := range []*string{&config.Source, &config.Replica, &config.Log} {
		expanded, err := homedirExpand(*p)
		if err != nil {
			return Mirror{}, errors.WithContext(err, "expand path")
		}

		if expanded != "" && !filepath.IsAbs(expanded) {
			expanded = filepath.Join(filepath.Dir(path), expanded)
		}
		*p = expanded
	}
	return config, nil
}

// WriteMirror writes the given mirror config to `path`.
func WriteMirror(path string, cfg Mirror) error {
	cfg.Version = SupportedMirrorConfigVersion
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// Merge returns a copy of the config with every field that's set in
// `overrides` replaced.
func (m Mirror) Merge(overrides Mirror) Mirror {
	if overrides.Source != "" {
		m.Source = overrides.Source
	}
	if overrides.Replica != "" {
		m.Replica = overrides.Replica
	}
	if overrides.Interval != 0 {
		m.Interval = overrides.Interval
	}
	if overrides.Log != "" {
		m.Log = overrides.Log
	}
	if overrides.Digest != "" {
		m.Digest = overrides.Digest
	}
	if overrides.Workers != 0 {
		m.Workers = overrides.Workers
	}
	return m
}

// Normalize expands and cleans the paths in the config, and fills in the
// optional fields that aren't set.
func (m Mirror) Normalize() (Mirror, error) {
	for _, p := range []*string{&m.Source, &m.Replica, &m.Log} {
		if *p == "" {
			continue
		}

		expanded, err := homedirExpand(*p)
		if err != nil {
			return Mirror{}, errors.WithContext(err, "expand path")
		}

		abs, err := filepath.Abs(expanded)
		if err != nil {
			return Mirror{}, errors.WithContext(err, "absolute path")
		}
		*p = abs
	}

	if m.Version == "" {
		m.Version = SupportedMirrorConfigVersion
	}
	if m.Digest == "" {
		m.Digest = sync.DefaultDigest
	}
	if m.Workers == 0 {
		m.Workers = DefaultWorkers
	}
	return m, nil
}

// Validate checks that the config can be used to run a mirror. It expects a
// normalized config.
func (m Mirror) Validate() error {
	required := []struct {
		name  string
		unset bool
	}{
		{"source", m.Source == ""},
		{"replica", m.Replica == ""},
		{"interval", m.Interval == 0},
		{"log", m.Log == ""},
	}
	for _, field := range required {
		if field.unset {
			return errors.MissingFieldError{Field: field.name}
		}
	}

	if m.Interval < 0 {
		return errors.InvalidFieldError{Field: "interval", Reason: "must be a positive number of seconds"}
	}

	switch {
	case m.Source == m.Replica:
		return errors.InvalidFieldError{Field: "replica", Reason: "must differ from the source"}
	case isWithin(m.Source, m.Replica):
		return errors.InvalidFieldError{Field: "replica", Reason: "must not be inside the source"}
	case isWithin(m.Replica, m.Source):
		return errors.InvalidFieldError{Field: "replica", Reason: "must not contain the source"}
	}

	if _, err := sync.NewDigest(m.Digest); err != nil {
		return errors.InvalidFieldError{
			Field:  "digest",
			Reason: fmt.Sprintf("must be one of %s", strings.Join(sync.DigestNames(), ", ")),
		}
	}

	if m.Workers < 1 {
		return errors.InvalidFieldError{Field: "workers", Reason: "must be at least 1"}
	}
	return nil
}

func isWithin(root, path string) bool {
	_, err := sync.Rel(root, path)
	return err == nil
}

// Resolve builds the config for a mirror from the config file at `path`, if
// one is given, and the values in `flags`, which take precedence.
func Resolve(path string, flags Mirror) (Mirror, error) {
	var cfg Mirror
	if path != "" {
		var err error
		cfg, err = ParseMirror(path)
		if err != nil {
			return Mirror{}, errors.WithContext(err, "parse config")
		}
	}

	cfg, err := cfg.Merge(flags).Normalize()
	if err != nil {
		return Mirror{}, errors.WithContext(err, "normalize config")
	}

	if err := cfg.Validate(); err != nil {
		return Mirror{}, errors.NewFriendlyError("Invalid configuration: %s.\n\n"+
			"The source, replica, interval and log must all be set, either by "+
			"flag or in the config file.", err)
	}
	return cfg, nil
}

// IntervalDuration returns the time between the start of each pass.
func (m Mirror) IntervalDuration() time.Duration {
	return time.Duration(m.Interval) * time.Second
}

// SyncOptions returns the options for the reconciliation engine.
func (m Mirror) SyncOptions() sync.Options {
	return sync.Options{
		Source:  m.Source,
		Replica: m.Replica,
		Digest:  m.Digest,
		Workers: m.Workers,
	}
}
