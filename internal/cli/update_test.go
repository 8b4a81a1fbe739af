package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/library"
	"github.com/alnah/go-adcut/internal/pack"
)

func TestRunUpdateResolverFailure(t *testing.T) {
	env := NewEnv(WithResolver(fakeResolver{err: ffmpeg.ErrNotFound}))
	err := runUpdate(context.Background(), env, []string{"refs"})
	if !errors.Is(err, ffmpeg.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRunUpdateWritesSidecar(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ads")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spot.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	env := NewEnv(
		WithStderr(&bytes.Buffer{}),
		WithResolver(fakeResolver{}),
		WithCalculatorFactory(fakeCalcFactory{calc: fakeCalc{words: []uint32{1, 2, 3}}}),
		WithReporterFactory(nopReporterFactory{}),
	)

	if err := runUpdate(context.Background(), env, []string{dir}); err != nil {
		t.Fatalf("runUpdate: %v", err)
	}

	cache, err := pack.Load(library.SidecarPath(dir))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cache.Entries) != 1 || cache.Entries[0].Name != "spot.mp3" {
		t.Errorf("entries = %+v, want single spot.mp3", cache.Entries)
	}
}

func TestRunUpdateWarnsOnUnknownFFmpegVersion(t *testing.T) {
	dir := t.TempDir()

	reporter := &recordReporter{}
	env := NewEnv(
		WithResolver(fakeResolver{tools: ffmpeg.Tools{FFmpeg: "/nonexistent/ffmpeg"}}),
		WithCalculatorFactory(fakeCalcFactory{calc: fakeCalc{}}),
		WithReporterFactory(recordReporterFactory{reporter: reporter}),
	)

	if err := runUpdate(context.Background(), env, []string{dir}); err != nil {
		t.Fatalf("runUpdate: %v", err)
	}

	found := false
	for _, w := range reporter.warnings {
		if strings.Contains(w, "ffmpeg version") {
			found = true
		}
	}
	if !found {
		t.Errorf("no version warning recorded: %v", reporter.warnings)
	}
}

func TestUpdateCmdRequiresArgs(t *testing.T) {
	cmd := UpdateCmd(NewEnv())
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected usage error without directories")
	}
}
