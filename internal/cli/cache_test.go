package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/nocgen/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	var out bytes.Buffer
	if err := runCLI(t, &out, "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != filepath.Join(custom, appName) {
		t.Errorf("cache path = %q, want %q", got, filepath.Join(custom, appName))
	}
}

func TestCacheClearCommand(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	fc, err := cache.NewFileCache(filepath.Join(custom, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if err := runCLI(t, nil, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	st, err := fc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 0 {
		t.Errorf("entries after clear = %d, want 0", st.Entries)
	}
}

func TestCachePruneAndInfo(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	fc, err := cache.NewFileCache(filepath.Join(custom, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "live", []byte("x"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "dead", []byte("y"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if err := runCLI(t, nil, "cache", "info"); err != nil {
		t.Fatalf("cache info: %v", err)
	}
	if err := runCLI(t, nil, "cache", "prune"); err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	st, err := fc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 || st.Expired != 0 {
		t.Errorf("stats after prune = %+v, want 1 live entry", st)
	}
}

func TestCacheFilledByGenerate(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)
	cfg := writeConfig(t, meshConfig)
	out := filepath.Join(t.TempDir(), "network.xml")

	if err := runCLI(t, nil, "generate", "-c", cfg, "-o", out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(custom, appName))
	if err != nil {
		t.Fatalf("cache dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("generate left the cache empty")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
