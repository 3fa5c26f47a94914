package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/host/memory"
	"github.com/atomicstack/tab-mirror/internal/testutil"
)

func withStub[T any](restore *T, value T) func() {
	original := *restore
	*restore = value
	return func() { *restore = original }
}

func TestRunReportsOpenHostFailure(t *testing.T) {
	boom := errors.New("boom")
	defer withStub(&openHost, func(Config) (host.API, error) { return nil, boom })()

	err := Run(Config{List: true})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "open host") {
		t.Fatalf("expected wrapped open host error, got %v", err)
	}
}

func TestRunListClosesHost(t *testing.T) {
	b := memory.New()
	b.OpenWindow("https://a.test/")
	defer withStub(&openHost, func(Config) (host.API, error) { return b, nil })()

	if err := Run(Config{List: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := b.Windows(context.Background()); !errors.Is(err, host.ErrClosed) {
		t.Fatalf("expected host closed after list, got %v", err)
	}
}

func TestOpenHostMemoryDemo(t *testing.T) {
	api, err := openHost(Config{Host: "memory"})
	if err != nil {
		t.Fatalf("open host: %v", err)
	}
	defer api.Close()
	windows, err := api.Windows(context.Background())
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected demo topology with 3 windows, got %d", len(windows))
	}
}

func TestOpenHostMemorySeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "windows:\n  - tabs:\n      - {url: \"https://a.test/\", title: \"A\"}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	api, err := openHost(Config{Host: "memory", Seed: path})
	if err != nil {
		t.Fatalf("open host: %v", err)
	}
	defer api.Close()
	windows, err := api.Windows(context.Background())
	if err != nil || len(windows) != 1 || windows[0].Length() != 1 {
		t.Fatalf("unexpected seeded windows %+v (%v)", windows, err)
	}
}

func TestOpenHostRejectsUnknown(t *testing.T) {
	if _, err := openHost(Config{Host: "tmux"}); err == nil {
		t.Fatalf("expected error for unknown host")
	}
}

func TestListPrintsAlignedTable(t *testing.T) {
	seed, err := memory.ParseSeed([]byte(demoSeed))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := newMirror(Config{}, memory.NewFromSeed(seed))
	var out bytes.Buffer
	if err := List(context.Background(), m, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 1+7 {
		t.Fatalf("expected header and 7 tabs, got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "WINDOW") {
		t.Fatalf("expected header first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "*1") || !strings.Contains(lines[1], "AD") {
		t.Fatalf("expected focused window and active duplicated tab, got %q", lines[1])
	}
	if !strings.Contains(lines[4], "P") {
		t.Fatalf("expected pinned flag, got %q", lines[4])
	}
}

func TestTabFlags(t *testing.T) {
	if got := tabFlags(false, false, 1); got != "-" {
		t.Fatalf("expected -, got %q", got)
	}
	if got := tabFlags(true, true, 2); got != "APD" {
		t.Fatalf("expected APD, got %q", got)
	}
}

func TestListGolden(t *testing.T) {
	seed, err := memory.ParseSeed([]byte(`
windows:
  - focused: true
    tabs:
      - {url: "https://a.test/", title: "Alpha", active: true}
      - {url: "https://a.test/", title: "Alpha again"}
  - tabs:
      - {url: "https://c.test/", title: "Gamma", pinned: true}
`))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out bytes.Buffer
	if err := List(context.Background(), newMirror(Config{}, memory.NewFromSeed(seed)), &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	testutil.AssertGolden(t, "list.golden", out.String())
}
