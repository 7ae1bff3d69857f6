package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/sunnyland/controller"
)

func TestLoadEmbeddedPlayerSpec(t *testing.T) {
	spec, err := LoadPlayerSpec("")
	if err != nil {
		t.Fatalf("LoadPlayerSpec: %v", err)
	}
	if spec.Name == "" {
		t.Fatalf("expected a named player spec")
	}
	if err := spec.Controller.Validate(); err != nil {
		t.Fatalf("embedded controller config invalid: %v", err)
	}
	if spec.Body.CrouchHeight <= 0 || spec.Body.CrouchHeight >= spec.Body.Height {
		t.Fatalf("expected crouch height below standing height, got %+v", spec.Body)
	}
	if _, err := LoadScript(spec.Script); err != nil {
		t.Fatalf("expected referenced script %q to load: %v", spec.Script, err)
	}
}

func TestParsePlayerSpecDefaults(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
		check func(t *testing.T, spec *PlayerSpec, err error)
	}{
		{
			name: "partial_controller",
			yaml: "name: p\ncontroller:\n  speed: 9\n",
			check: func(t *testing.T, spec *PlayerSpec, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := controller.DefaultConfig()
				want.Speed = 9
				if spec.Controller != want {
					t.Fatalf("expected %+v, got %+v", want, spec.Controller)
				}
				if spec.Body.Width != 1 || spec.Body.Height != 1 {
					t.Fatalf("expected default body size, got %+v", spec.Body)
				}
			},
		},
		{
			name: "invalid_controller",
			yaml: "controller:\n  ray_distance: -1\n",
			check: func(t *testing.T, spec *PlayerSpec, err error) {
				if !errors.Is(err, controller.ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			},
		},
		{
			name: "bad_yaml",
			yaml: "controller: [",
			check: func(t *testing.T, spec *PlayerSpec, err error) {
				if err == nil {
					t.Fatalf("expected unmarshal error")
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := ParsePlayerSpec(tc.name, []byte(tc.yaml))
			tc.check(t, spec, err)
		})
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })

	if err := os.WriteFile(filepath.Join(dir, PlayerFile), []byte("name: override\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadPlayerSpec(PlayerFile)
	if err != nil {
		t.Fatalf("LoadPlayerSpec: %v", err)
	}
	if spec.Name != "override" {
		t.Fatalf("expected disk copy to win, got %q", spec.Name)
	}

	type nameOnly struct {
		Name  string `yaml:"name"`
		Extra int    `yaml:"extra"`
	}
	seeded, err := LoadSpec(PlayerFile, nameOnly{Name: "seed", Extra: 7})
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	if seeded.Name != "override" || seeded.Extra != 7 {
		t.Fatalf("expected file fields over seeded defaults, got %+v", seeded)
	}
	if _, err := LoadSpec("missing.yaml", nameOnly{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from LoadSpec, got %v", err)
	}

	if _, err := Load("missing.yaml"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, prefab, script string
	}{
		{"player.yaml", "player.yaml", "scripts/player.yaml"},
		{"prefabs/player.yaml", "player.yaml", "scripts/player.yaml"},
		{"/abs/game/prefabs/scripts/a.tengo", "scripts/a.tengo", "scripts/a.tengo"},
		{"scripts/a.tengo", "scripts/a.tengo", "scripts/a.tengo"},
	}
	for _, tc := range cases {
		if got := cleanPrefabPath(tc.in); got != tc.prefab {
			t.Fatalf("cleanPrefabPath(%q) = %q, want %q", tc.in, got, tc.prefab)
		}
		if got := cleanScriptPath(tc.in); got != tc.script {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", tc.in, got, tc.script)
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, PlayerFile)
	if err := os.WriteFile(target, []byte("name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if filepath.Base(got) != PlayerFile {
			t.Fatalf("expected event for %s, got %s", PlayerFile, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for watcher event")
	}
}

func TestWatcherDrain(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	w.Events <- "prefabs/player.yaml"
	w.Errors <- errors.New("overflow")
	var paths []string
	var errs []error
	if !w.Drain(func(p string) { paths = append(paths, p) }, func(err error) { errs = append(errs, err) }) {
		t.Fatalf("expected open watcher")
	}
	if len(paths) != 1 || len(errs) != 1 {
		t.Fatalf("expected one path and one error, got %v %v", paths, errs)
	}
	if !w.Drain(func(string) { t.Fatalf("unexpected path") }, nil) {
		t.Fatalf("expected open watcher with nothing pending")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	done := make(chan bool)
	go func() { done <- w.Drain(func(string) {}, nil) }()
	select {
	case open := <-done:
		if open {
			t.Fatalf("expected Drain to report the closed watcher")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Drain kept spinning on a closed watcher")
	}
}
