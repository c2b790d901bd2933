package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunResolvesManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "l10n.yaml")
	writeFile(t, manifest, `
default_locale: en-US
locales: [en-US, pl]
sources:
  - name: browser
    path_scheme: "browser/{locale}/"
    locales: [en-US, pl]
`)
	writeFile(t, filepath.Join(dir, "browser", "pl", "menu.ftl"), "history = Historia\n")

	for _, async := range []bool{false, true} {
		args := []string{"--manifest", manifest, "--resource", "menu.ftl", "--message", "history"}
		if async {
			args = append(args, "--async")
		}
		cfg, err := parseFlags(args)
		if err != nil {
			t.Fatalf("parseFlags: %v", err)
		}

		var out bytes.Buffer
		if err := run(context.Background(), cfg, &out); err != nil {
			t.Fatalf("run: %v", err)
		}

		got := out.String()
		for _, want := range []string{"[en-US] failed", "[pl] ready sources=browser", "history = Historia"} {
			if !strings.Contains(got, want) {
				t.Fatalf("async=%v: output missing %q:\n%s", async, want, got)
			}
		}
	}
}

func TestParseFlagsRequiresResource(t *testing.T) {
	if _, err := parseFlags([]string{"--manifest", "l10n.yaml"}); err == nil {
		t.Fatal("expected error without --resource")
	}
}

func TestParseFlagsDefaultsRootToManifestDir(t *testing.T) {
	cfg, err := parseFlags([]string{"--manifest", "config/l10n.toml", "-r", "a.ftl,b.ftl?", "-l", "pl"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.root != "config" {
		t.Fatalf("root = %q want config", cfg.root)
	}
	if len(cfg.resources) != 2 || cfg.resources[1] != "b.ftl?" {
		t.Fatalf("resources = %v", cfg.resources)
	}
	if len(cfg.locales) != 1 || cfg.locales[0] != "pl" {
		t.Fatalf("locales = %v", cfg.locales)
	}
}
