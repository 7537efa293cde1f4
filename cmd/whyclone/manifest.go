package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "whyclone.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package   packageConfig   `toml:"package"`
	Translate translateConfig `toml:"translate"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type translateConfig struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	Jobs   int    `toml:"jobs"`
	Cache  *bool  `toml:"cache"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("translate") {
		if !meta.IsDefined("translate", "input") || strings.TrimSpace(cfg.Translate.Input) == "" {
			return projectConfig{}, fmt.Errorf("%s: missing [translate].input", path)
		}
		if cfg.Translate.Jobs < 0 {
			return projectConfig{}, fmt.Errorf("%s: [translate].jobs must not be negative", path)
		}
	}
	return cfg, nil
}

// inputPath resolves [translate].input against the manifest directory.
func (m *projectManifest) inputPath() (string, error) {
	in := strings.TrimSpace(m.Config.Translate.Input)
	if in == "" {
		return "", fmt.Errorf("%s: no input given and [translate].input is not set", m.Path)
	}
	return filepath.Join(m.Root, filepath.FromSlash(in)), nil
}

// outputPath resolves [translate].output; empty means stdout.
func (m *projectManifest) outputPath() string {
	out := strings.TrimSpace(m.Config.Translate.Output)
	if out == "" || out == "-" {
		return out
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}

func (m *projectManifest) cacheEnabled() bool {
	return m.Config.Translate.Cache == nil || *m.Config.Translate.Cache
}
