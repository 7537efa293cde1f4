package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"whyclone/internal/clonemap"
	"whyclone/internal/diag"
	"whyclone/internal/program"
)

const pushProgram = `
[[def]]
path = "lib::len"
kind = "logic"
params = ["T"]

[[def]]
path = "lib::push"
kind = "program"
params = ["T"]

  [[def.uses]]
  def = "lib::len"
  subst = ["T"]
  contract = true

[[def]]
path = "app::run"
kind = "program"

  [[def.uses]]
  def = "lib::len"
  subst = ["u32"]
  contract = true

  [[def.uses]]
  def = "lib::push"
  subst = ["u32"]
`

const cyclicProgram = `
[[def]]
path = "m::a"
kind = "logic"

  [[def.uses]]
  def = "m::b"

[[def]]
path = "m::b"
kind = "logic"

  [[def.uses]]
  def = "m::a"

[[def]]
path = "m::f"
kind = "program"

  [[def.uses]]
  def = "m::a"
`

func parse(t *testing.T, src string) *program.Program {
	t.Helper()
	prog, err := program.Parse([]byte(src), program.FormatTOML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog
}

func unitText(t *testing.T, res *Result, name string) string {
	t.Helper()
	for _, u := range res.Units {
		if string(u.Name) == name {
			if u.Err != nil {
				t.Fatalf("%s: %v", name, u.Err)
			}
			return u.Text
		}
	}
	t.Fatalf("no unit %s", name)
	return ""
}

func TestPlanUnits(t *testing.T) {
	prog := parse(t, pushProgram)
	var names []string
	for _, u := range PlanUnits(prog, nil) {
		names = append(names, string(u.Name))
	}
	want := []string{
		"Lib_Len_Interface", "Lib_Len",
		"Lib_Push_Interface", "Lib_Push",
		"App_Run_Interface", "App_Run",
	}
	if !slices.Equal(names, want) {
		t.Fatalf("units = %v, want %v", names, want)
	}

	only := PlanUnits(prog, []string{"App_Run"})
	if len(only) != 1 || only[0].Name != "App_Run" || len(only[0].Stages) != 2 {
		t.Fatalf("filtered plan = %+v", only)
	}
}

func TestTranslateProgramStagesShareClones(t *testing.T) {
	prog := parse(t, pushProgram)
	res, err := Translate(context.Background(), prog, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShort(res.Bag.Items(), true))
	}

	want := "module App_Run\n" +
		"  use mach.int.UInt32\n" +
		"  clone Lib_Len as Len0 with type t = uint32\n" +
		"  clone Lib_Push_Interface as Push1 with type t = uint32, function Len0.len = Len0.len\n" +
		"end\n"
	if got := unitText(t, res, "App_Run"); got != want {
		t.Fatalf("App_Run:\n%s\nwant:\n%s", got, want)
	}

	want = "module App_Run_Interface\n" +
		"  use mach.int.UInt32\n" +
		"  clone Lib_Len_Interface as Len0 with type t = uint32\n" +
		"end\n"
	if got := unitText(t, res, "App_Run_Interface"); got != want {
		t.Fatalf("App_Run_Interface:\n%s\nwant:\n%s", got, want)
	}

	want = "module Lib_Push\n" +
		"  clone Lib_Len as Len0 with type t = 't\n" +
		"end\n"
	if got := unitText(t, res, "Lib_Push"); got != want {
		t.Fatalf("Lib_Push:\n%s\nwant:\n%s", got, want)
	}

	if got := unitText(t, res, "Lib_Len"); got != "module Lib_Len\nend\n" {
		t.Fatalf("Lib_Len = %q", got)
	}
}

func TestTranslateHoistsBodyPreludeImports(t *testing.T) {
	prog := parse(t, `
[[def]]
path = "lib::len"
kind = "logic"
params = ["T"]

[[def]]
path = "app::run"
kind = "program"

  [[def.uses]]
  def = "lib::len"
  subst = ["u32"]
  contract = true

  [[def.uses]]
  def = "lib::len"
  subst = ["i64"]
`)
	res, err := Translate(context.Background(), prog, nil, Options{Units: []string{"App_Run"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "module App_Run\n" +
		"  use mach.int.UInt32\n" +
		"  use mach.int.Int64\n" +
		"  clone Lib_Len as Len0 with type t = uint32\n" +
		"  clone Lib_Len as Len1 with type t = int64\n" +
		"end\n"
	if got := unitText(t, res, "App_Run"); got != want {
		t.Fatalf("App_Run:\n%s\nwant:\n%s", got, want)
	}
}

func TestTranslateIsDeterministicAcrossJobs(t *testing.T) {
	prog := parse(t, pushProgram)
	var outputs []string
	for _, jobs := range []int{1, 3, 16} {
		res, err := Translate(context.Background(), prog, nil, Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := WriteModules(&buf, res); err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, buf.String())
	}
	for i := 1; i < len(outputs); i++ {
		if outputs[i] != outputs[0] {
			t.Fatalf("output differs between job counts:\n%s\nvs\n%s", outputs[0], outputs[i])
		}
	}
	if !strings.HasPrefix(outputs[0], "module Lib_Len_Interface\nend\n\nmodule Lib_Len\n") {
		t.Fatalf("unexpected module order:\n%s", outputs[0])
	}
}

func TestTranslateReportsCycle(t *testing.T) {
	prog := parse(t, cyclicProgram)
	res, err := Translate(context.Background(), prog, nil, Options{Graph: true})
	if err != nil {
		t.Fatal(err)
	}

	var failed []string
	for _, u := range res.Units {
		if u.Err != nil {
			failed = append(failed, string(u.Name))
		}
	}
	if !slices.Equal(failed, []string{"M_F"}) {
		t.Fatalf("failed units = %v, want [M_F]", failed)
	}
	f := res.Units[len(res.Units)-1]
	var cycle *clonemap.CycleError
	if !errors.As(f.Err, &cycle) || !slices.Equal(cycle.Nodes, []string{"A0", "B1"}) {
		t.Fatalf("M_F error = %v", f.Err)
	}
	if f.Text != "" {
		t.Fatalf("failed unit has text %q", f.Text)
	}
	if f.Graph == nil || len(f.Graph.Edges) != 2 {
		t.Fatalf("graph snapshot = %+v", f.Graph)
	}

	items := res.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
	d := items[0]
	if d.Code != diag.CloneCyclicDependency || d.Item != "M_F" || len(d.Notes) != 2 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Notes[0].Msg != "A0 must be cloned before B1" {
		t.Fatalf("note = %q", d.Notes[0].Msg)
	}
}

func TestTranslateUsesDiskCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := []byte(pushProgram)
	opts := Options{Cache: cache}

	first, err := Translate(context.Background(), parse(t, pushProgram), src, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Translate(context.Background(), parse(t, pushProgram), src, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Units {
		a, b := first.Units[i], second.Units[i]
		if a.Cached || !b.Cached {
			t.Fatalf("%s: cached = %v then %v", a.Name, a.Cached, b.Cached)
		}
		if a.Text != b.Text {
			t.Fatalf("%s: cached text %q, want %q", a.Name, b.Text, a.Text)
		}
	}

	// A graph request recomputes everything.
	third, err := Translate(context.Background(), parse(t, pushProgram), src, Options{Cache: cache, Graph: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range third.Units {
		if u.Cached || u.Graph == nil {
			t.Fatalf("%s: cached = %v, graph = %v", u.Name, u.Cached, u.Graph)
		}
	}
}

func TestDiskCacheKeysAndDrop(t *testing.T) {
	if UnitKey([]byte("a"), "M") == UnitKey([]byte("b"), "M") {
		t.Fatalf("program text must be part of the key")
	}
	if UnitKey([]byte("a"), "M") == UnitKey([]byte("a"), "N") {
		t.Fatalf("unit name must be part of the key")
	}

	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := UnitKey([]byte("prog"), "M")
	if err := cache.Put(key, &CachedUnit{Name: "M", Text: "module M\nend\n"}); err != nil {
		t.Fatal(err)
	}
	var got CachedUnit
	if ok, err := cache.Get(key, &got); err != nil || !ok || got.Text != "module M\nend\n" {
		t.Fatalf("Get = %v, %v, %+v", ok, err, got)
	}

	// A second handle has an empty memory front and reads the file.
	reopened, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	got = CachedUnit{}
	if ok, err := reopened.Get(key, &got); err != nil || !ok || got.Name != "M" {
		t.Fatalf("disk Get = %v, %v, %+v", ok, err, got)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, err := cache.Get(key, &got); err != nil || ok {
		t.Fatalf("entry survived DropAll: %v, %v", ok, err)
	}

	var nilCache *DiskCache
	if ok, err := nilCache.Get(key, &got); ok || err != nil {
		t.Fatalf("nil cache Get = %v, %v", ok, err)
	}
}

func TestTranslateFileClassifiesLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
		item string
	}{
		{"unknown.toml", "[[def]]\npath = \"f\"\nkind = \"program\"\n  [[def.uses]]\n  def = \"g\"\n", diag.LoadUnknownDef, "f"},
		{"badtype.toml", "[[def]]\npath = \"f\"\nkind = \"logic\"\nsignature = [\"Missing\"]\n", diag.LoadBadType, "f"},
		{"kind.toml", "[[def]]\npath = \"f\"\nkind = \"module\"\n", diag.LoadInvalidProgram, "f"},
		{"missing.toml", "", diag.IOReadError, ""},
	}
	dir := t.TempDir()
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		if tc.src != "" {
			if err := os.WriteFile(path, []byte(tc.src), 0o600); err != nil {
				t.Fatal(err)
			}
		}
		res, err := TranslateFile(context.Background(), path, Options{})
		if err != nil {
			t.Fatal(err)
		}
		items := res.Bag.Items()
		if len(items) != 1 || items[0].Code != tc.code {
			t.Fatalf("%s: diagnostics = %+v, want code %s", tc.name, items, tc.code)
		}
		want := tc.item
		if want == "" {
			want = path
		}
		if items[0].Item != want {
			t.Fatalf("%s: item = %q, want %q", tc.name, items[0].Item, want)
		}
		if len(res.Units) != 0 {
			t.Fatalf("%s: units planned after load failure", tc.name)
		}
	}
}

func TestTranslateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Translate(ctx, parse(t, pushProgram), nil, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestAddTimings(t *testing.T) {
	res, err := Translate(context.Background(), parse(t, pushProgram), nil, Options{MaxDiagnostics: 1})
	if err != nil {
		t.Fatal(err)
	}
	res.AddTimings("prog.toml")
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("timings diagnostic = %+v", items)
	}
	if !strings.Contains(items[0].Notes[0].Msg, `"name":"emit"`) {
		t.Fatalf("timings payload = %s", items[0].Notes[0].Msg)
	}
}
