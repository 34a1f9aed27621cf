// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// pythonTree lays out a minimal watched project: a manifest at the root and
// a src package with two modules.
func pythonTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pkg := filepath.Join(dir, "src", "flightdeck")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\nname = \"flightdeck\"\n")
	writeFile(t, filepath.Join(pkg, "__init__.py"), "")
	writeFile(t, filepath.Join(pkg, "cli.py"), "def main():\n    pass\n")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startWatcher constructs the watcher, runs its event loop in the
// background, and registers cleanup that cancels the loop and fails the
// test if Run returned an error. Output writers default to in-memory
// buffers when the test does not care about them.
func startWatcher(t *testing.T, cfg Config) {
	t.Helper()

	if cfg.Stdout == nil {
		cfg.Stdout = &bytes.Buffer{}
	}
	if cfg.Stderr == nil {
		cfg.Stderr = &bytes.Buffer{}
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case runErr := <-errCh:
			if runErr != nil {
				t.Errorf("Run() error: %v", runErr)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after context cancellation")
		}
	})
}

// awaitChange receives callback invocations until one contains want, or
// fails the test after a timeout. Extra callbacks along the way (for
// example from a directory-creation event) are tolerated.
func awaitChange(t *testing.T, fired <-chan []string, want string) []string {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, want) {
				return changed
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a change containing %q", want)
		}
	}
}

// The manifest and every Python module under it should funnel into one
// callback when edited inside a single debounce window.
func TestWatcherCoalescesManifestAndModuleEdits(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	startWatcher(t, Config{
		BaseDir:  dir,
		Patterns: ManifestPatterns("pyproject.toml"),
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})

	edits := []string{
		filepath.Join(dir, "pyproject.toml"),
		filepath.Join(dir, "src", "flightdeck", "cli.py"),
		filepath.Join(dir, "src", "flightdeck", "__init__.py"),
	}
	for _, path := range edits {
		writeFile(t, path, "# edited\n")
		// Spaced just enough that the OS reports separate events, still
		// inside the debounce window.
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	// Settle so a stray second fire would be counted.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 coalesced callback, got %d", calls)
	}
	for _, want := range []string{
		"pyproject.toml",
		filepath.Join("src", "flightdeck", "cli.py"),
		filepath.Join("src", "flightdeck", "__init__.py"),
	} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed set, got %v", want, collected)
		}
	}
}

// Only paths selected by the manifest patterns may reach the callback;
// unrelated files in the tree stay silent.
func TestWatcherManifestPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)
	fired := make(chan []string, 10)

	startWatcher(t, Config{
		BaseDir:  dir,
		Patterns: ManifestPatterns("pyproject.toml"),
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, "NOTES.md"), "scratch")
	// A full debounce cycle must pass without the markdown file firing.
	time.Sleep(200 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "src", "flightdeck", "cli.py"), "def main(): ...\n")

	changed := awaitChange(t, fired, filepath.Join("src", "flightdeck", "cli.py"))
	if slices.Contains(changed, "NOTES.md") {
		t.Errorf("non-matching NOTES.md appeared in changed set %v", changed)
	}
}

// Virtualenv noise and user-ignored lockfiles never surface, even when no
// watch patterns restrict the tree.
func TestWatcherIgnoresVenvAndLockfiles(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)
	if err := os.MkdirAll(filepath.Join(dir, ".venv"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan []string, 10)

	startWatcher(t, Config{
		BaseDir:  dir,
		Ignore:   []string{"**/*.lock"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, ".venv", "marker.py"), "")
	writeFile(t, filepath.Join(dir, "uv.lock"), "{}")
	time.Sleep(200 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\nname = \"flightdeck\"\nversion = \"1.0\"\n")

	changed := awaitChange(t, fired, "pyproject.toml")
	for _, forbidden := range []string{filepath.Join(".venv", "marker.py"), "uv.lock"} {
		if slices.Contains(changed, forbidden) {
			t.Errorf("ignored path %q appeared in changed set %v", forbidden, changed)
		}
	}
}

// Directories created after startup are picked up, so modules added to a
// fresh subpackage still trigger callbacks.
func TestWatcherFollowsNewPackageDirectories(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)
	fired := make(chan []string, 10)

	startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	sub := filepath.Join(dir, "src", "flightdeck", "commands")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the event loop time to register the new directory.
	time.Sleep(200 * time.Millisecond)

	writeFile(t, filepath.Join(sub, "check.py"), "def run(): ...\n")

	awaitChange(t, fired, filepath.Join("src", "flightdeck", "commands", "check.py"))
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		BaseDir:  pythonTree(t),
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() returned error on cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

// While a slow re-validation is still running, further debounce fires are
// skipped instead of stacking concurrent callbacks.
func TestWatcherSkipsWhileCallbackBusy(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)

	var (
		mu    sync.Mutex
		calls int
	)
	firstDone := make(chan struct{})
	stderrBuf := &bytes.Buffer{}

	startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Stderr:   stderrBuf,
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()

			if first {
				// Hold the busy guard well past the next debounce fire.
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\n")
	// Let the first callback start.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "src", "flightdeck", "cli.py"), "# busy edit\n")

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	// One call when the second fire was skipped outright; two when the
	// rescheduled fire landed after the first callback finished. Anything
	// more means callbacks overlapped.
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
	if calls == 1 && !strings.Contains(stderrBuf.String(), "skipping re-execution") {
		t.Logf("stderr: %s", stderrBuf.String())
		t.Log("expected skip message in stderr, but callback may have completed before second fire")
	}
}

func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := pythonTree(t)
	done := make(chan struct{})
	stdoutBuf := &bytes.Buffer{}

	startWatcher(t, Config{
		BaseDir:     dir,
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      stdoutBuf,
		OnChange: func(_ context.Context, _ []string) error {
			close(done)
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\n")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	if out := stdoutBuf.String(); !strings.Contains(out, "\033[2J\033[H") {
		t.Errorf("expected ANSI clear sequence in stdout, got %q", out)
	}
}

func TestWatcherRejectsBadGlob(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		BaseDir:  t.TempDir(),
		Patterns: []string{"[invalid"},
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("New() should reject an unparseable glob pattern")
	}
	if !errors.Is(err, ErrInvalidWatchConfig) {
		t.Errorf("error %v does not wrap ErrInvalidWatchConfig", err)
	}
}

func TestWatcherRunIsSingleUse(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		BaseDir:  t.TempDir(),
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); err == nil {
		t.Fatal("second Run() call should return an error")
	} else if !strings.Contains(err.Error(), "Run called more than once") {
		t.Errorf("error message should mention double-run, got: %v", err)
	}

	cancel()
	if firstErr := <-errCh; firstErr != nil {
		t.Fatalf("first Run() returned error: %v", firstErr)
	}
}

// The built-in ignore list must cover the high-noise paths of a Python
// project while leaving real sources alone.
func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	matchesAny := func(rel string) bool {
		normalized := filepath.ToSlash(rel)
		for _, pat := range ignores {
			if ok, matchErr := doublestar.Match(pat, normalized); matchErr == nil && ok {
				return true
			}
		}
		return false
	}

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".git/objects/ab/cd1234", true},
		{".venv/lib/python3.12/site-packages/httpx/__init__.py", true},
		{"venv/bin/activate", true},
		{"src/__pycache__/mod.cpython-312.pyc", true},
		{"src/flightdeck.egg-info/PKG-INFO", true},
		{"dist/flightdeck-1.0.0-py3-none-any.whl", true},
		{"build/lib/flightdeck/cli.py", true},
		{".tox/py312/log/env.log", true},
		{"cli.py.swp", true},
		{"cli.py.swo", true},
		{"backup~", true},
		{".DS_Store", true},
		{"sub/.DS_Store", true},
		// These should NOT be ignored.
		{"pyproject.toml", false},
		{"src/flightdeck/cli.py", false},
		{"README.md", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := matchesAny(tt.path); got != tt.ignored {
				t.Errorf("default ignores match %q = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}

// ManifestPatterns selects the manifest itself and Python modules at any
// depth, and nothing else.
func TestManifestPatternsMatching(t *testing.T) {
	t.Parallel()

	patterns := ManifestPatterns("pyproject.toml")
	matchesAny := func(rel string) bool {
		for _, pat := range patterns {
			if ok, matchErr := doublestar.Match(pat, rel); matchErr == nil && ok {
				return true
			}
		}
		return false
	}

	tests := []struct {
		path string
		want bool
	}{
		{"pyproject.toml", true},
		{"cli.py", true},
		{"src/flightdeck/cli.py", true},
		{"src/flightdeck/commands/check.py", true},
		{"README.md", false},
		{"sub/pyproject.toml", false},
		{"src/flightdeck/data.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := matchesAny(tt.path); got != tt.want {
				t.Errorf("ManifestPatterns match %q = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
