package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
requires: ">= 1.0, < 2"
builtins: [lookup, "&&"]
format: yaml
cache: build/asc.db
listen: ":9000"
`)
	cfg, err := ParseConfig(data, "asc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "yaml" || cfg.Listen != ":9000" || cfg.Cache != "build/asc.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Builtins) != 2 || cfg.Builtins[1] != "&&" {
		t.Errorf("unexpected builtins %v", cfg.Builtins)
	}
	if err := cfg.CheckRequires(Version); err != nil {
		t.Errorf("version %s should satisfy: %v", Version, err)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "asc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "json" || cfg.Listen != DefaultListen {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty config should equal Default()")
	}
}

func TestParseConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
		msg  string
	}{
		{"bad_yaml", "format: [", "parsing asc.yaml"},
		{"bad_constraint", "requires: banana", "requires: invalid constraint"},
		{"bad_format", "format: xml", "unknown output format"},
		{"empty_builtin", `builtins: [""]`, "empty name"},
		{"global_builtin", "builtins: ['@x']", "already resolves globally"},
		{"repeated_builtin", "builtins: [a, b, a]", "also listed as builtins[0]"},
		{"standard_builtin", "builtins: [map]", "is a standard builtin"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data), "asc.yaml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected %q in %q", tc.msg, err.Error())
			}
		})
	}
}

func TestCheckRequires(t *testing.T) {
	testCases := []struct {
		requires string
		version  string
		ok       bool
	}{
		{"", "0.0.1", true},
		{"^1.0", "1.4.2", true},
		{"^1.0", "2.0.0", false},
		{">= 1.2", "1.1.9", false},
		{"~1.0.0", "1.0.7", true},
	}
	for _, tc := range testCases {
		cfg := &Config{Requires: tc.requires}
		err := cfg.CheckRequires(tc.version)
		if (err == nil) != tc.ok {
			t.Errorf("%q against %s: ok=%v, err=%v", tc.requires, tc.version, tc.ok, err)
		}
	}
	if err := (&Config{Requires: "^1"}).CheckRequires("not-a-version"); err == nil {
		t.Errorf("expected error for a bad version")
	}
}

func TestLoadAndFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "asc.yaml")
	if err := os.WriteFile(path, []byte("cache: units.db\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != path {
		t.Fatalf("expected %s, got %s", path, found)
	}

	cfg, err := LoadConfig(found)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache != filepath.Join(root, "units.db") {
		t.Errorf("cache path should be relative to the config file, got %s", cfg.Cache)
	}

	if _, err := LoadConfig(filepath.Join(root, "missing.yaml")); err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestBuiltinHelpers(t *testing.T) {
	if !IsBuiltin("fold") || IsBuiltin("lookup") {
		t.Errorf("IsBuiltin misclassifies")
	}
	if !IsSourceFile("main.asc") || IsSourceFile("main.go") || IsSourceFile(".asc") {
		t.Errorf("IsSourceFile misclassifies")
	}
}
