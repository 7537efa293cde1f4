package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testProgram = `
[[def]]
path = "lib::len"
kind = "logic"
params = ["T"]

[[def]]
path = "app::run"
kind = "program"

  [[def.uses]]
  def = "lib::len"
  subst = ["bool"]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"ok", "[package]\nname = \"demo\"\n[translate]\ninput = \"prog.toml\"\njobs = 2\ncache = false\n", ""},
		{"no-package", "[translate]\ninput = \"prog.toml\"\n", "missing [package]"},
		{"no-name", "[package]\nname = \" \"\n", "missing [package].name"},
		{"no-input", "[package]\nname = \"demo\"\n[translate]\njobs = 2\n", "missing [translate].input"},
		{"jobs", "[package]\nname = \"demo\"\n[translate]\ninput = \"p.toml\"\njobs = -1\n", "must not be negative"},
		{"unknown", "[package]\nname = \"demo\"\nversion = \"1\"\n", "unknown key \"package.version\""},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".toml")
		writeFile(t, path, tc.content)
		cfg, err := loadProjectConfig(path)
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if cfg.Translate.Jobs != 2 || cfg.Translate.Cache == nil || *cfg.Translate.Cache {
				t.Fatalf("%s: config = %+v", tc.name, cfg)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: err = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, manifestName), "[package]\nname = \"demo\"\n")

	m, found, err := loadProjectManifest(nested)
	if err != nil || !found {
		t.Fatalf("loadProjectManifest = %v, %v", found, err)
	}
	if m.Root != root || !m.cacheEnabled() || m.outputPath() != "" {
		t.Fatalf("manifest = %+v", m)
	}
	if _, err := m.inputPath(); err == nil {
		t.Fatalf("expected an error without [translate].input")
	}
}

func TestTranslateFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prog.toml"), testProgram)
	writeFile(t, filepath.Join(dir, manifestName),
		"[package]\nname = \"demo\"\n\n[translate]\ninput = \"prog.toml\"\noutput = \"out.mlw\"\ncache = false\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"translate", "--color=off", "--quiet"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("translate: %v\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.mlw"))
	if err != nil {
		t.Fatal(err)
	}
	want := "module App_Run\n  clone Lib_Len as Len0 with type t = bool\nend\n"
	if !strings.Contains(string(data), want) {
		t.Fatalf("output:\n%s\nwant it to contain:\n%s", data, want)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout should be empty when writing to a file, got %q", stdout.String())
	}
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.toml")
	writeFile(t, path, testProgram)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"graph", "--color=off", "--unit", "App_Run", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("graph: %v\n%s", err, stderr.String())
	}
	want := "module App_Run (app::run)\n" +
		"node App_Run = app::run[] hidden\n" +
		"node Len0 = lib::len[bool] cloned\n"
	if stdout.String() != want {
		t.Fatalf("graph output:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

// resetFlags restores the named flags of rootCmd after a test that set them.
func resetFlags(t *testing.T, names ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, name := range names {
			f := rootCmd.PersistentFlags().Lookup(name)
			if f == nil {
				f = translateCmd.Flags().Lookup(name)
			}
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func TestTranslateClearsCacheAndTracesNDJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	stale := filepath.Join(dir, "cache", "whyclone", "units", "stale.mp")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, stale, "stale")
	prog := filepath.Join(dir, "prog.toml")
	writeFile(t, prog, testProgram)
	tracePath := filepath.Join(dir, "trace.log")

	resetFlags(t, "trace", "trace-format", "clear-cache", "output")
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"translate", "--color=off", "--quiet", "--clear-cache",
		"--trace", tracePath, "--trace-format", "ndjson", "-o", filepath.Join(dir, "out.mlw"), prog})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("translate: %v\n%s", err, stderr.String())
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale cache entry survived --clear-cache: %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "{") || !strings.Contains(string(data), `"name":"translate"`) {
		t.Fatalf("expected NDJSON trace events, got:\n%s", data)
	}
}
