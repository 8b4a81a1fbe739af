package match

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/pack"
)

type stubFingerprinter struct {
	words []uint32
	err   error
}

func (s stubFingerprinter) Fingerprint(context.Context, string) ([]uint32, error) {
	return s.words, s.err
}

func writePack(t *testing.T, path string, entries ...pack.Entry) {
	t.Helper()
	f := &pack.File{Entries: entries}
	if err := f.WriteFile(path); err != nil {
		t.Fatal(err)
	}
}

func TestCutMatchesNoPacks(t *testing.T) {
	e := NewEngine(stubFingerprinter{words: []uint32{1, 2, 3}}, fingerprint.DefaultConfig())

	inclusions, exclusions, err := e.CutMatches(context.Background(), "in.mkv", nil, nil)
	if err != nil {
		t.Fatalf("CutMatches: %v", err)
	}
	if len(inclusions) != 0 || len(exclusions) != 0 {
		t.Errorf("got %d/%d matches, want none", len(inclusions), len(exclusions))
	}
}

func TestCutMatchesInputFingerprintFailureAborts(t *testing.T) {
	wantErr := errors.New("no audio")
	e := NewEngine(stubFingerprinter{err: wantErr}, fingerprint.DefaultConfig())

	_, _, err := e.CutMatches(context.Background(), "in.mkv", nil, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestCutMatchesCorruptPackDropped(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pck")
	writePack(t, good, pack.Entry{Name: "spot.mp3", Fingerprint: []uint32{1, 2}})
	bad := filepath.Join(dir, "bad.pck")
	if err := os.WriteFile(bad, []byte("garbage without separator\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var matched []string
	e := NewEngine(stubFingerprinter{words: []uint32{1, 2}}, fingerprint.DefaultConfig(),
		WithMatchFn(func(input, reference []uint32, cfg fingerprint.Config) ([]fingerprint.Segment, error) {
			matched = append(matched, "spot.mp3")
			return nil, nil
		}),
		WithParallel(1))

	_, _, err := e.CutMatches(context.Background(), "in.mkv", []string{good, bad}, nil)
	if err != nil {
		t.Fatalf("CutMatches: %v", err)
	}
	if len(matched) != 1 {
		t.Errorf("matched %v, want exactly the good pack's entry", matched)
	}
}

func TestCutMatchesLoadsAllPacks(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("refs%d.pck", i))
		writePack(t, path, pack.Entry{
			Name:        fmt.Sprintf("spot%d.mp3", i),
			Fingerprint: []uint32{uint32(i + 1)},
		})
		paths = append(paths, path)
	}

	var mu sync.Mutex
	seen := make(map[uint32]bool)
	e := NewEngine(stubFingerprinter{words: []uint32{9}}, fingerprint.DefaultConfig(),
		WithMatchFn(func(input, reference []uint32, cfg fingerprint.Config) ([]fingerprint.Segment, error) {
			mu.Lock()
			seen[reference[0]] = true
			mu.Unlock()
			return nil, nil
		}))

	if _, _, err := e.CutMatches(context.Background(), "in.mkv", paths, nil); err != nil {
		t.Fatalf("CutMatches: %v", err)
	}
	if len(seen) != 5 {
		t.Errorf("matched entries from %d packs, want 5: %v", len(seen), seen)
	}
}

func TestCutMatchesEntryFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.pck")
	writePack(t, path,
		pack.Entry{Name: "a.mp3", Fingerprint: []uint32{1}},
		pack.Entry{Name: "b.mp3", Fingerprint: []uint32{2}},
	)

	e := NewEngine(stubFingerprinter{words: []uint32{9}}, fingerprint.DefaultConfig(),
		WithMatchFn(func(input, reference []uint32, cfg fingerprint.Config) ([]fingerprint.Segment, error) {
			if reference[0] == 1 {
				return nil, errors.New("incompatible")
			}
			return []fingerprint.Segment{{Offset1: 10, Items: 30, Score: 0.9}}, nil
		}),
		WithParallel(1))

	inclusions, _, err := e.CutMatches(context.Background(), "in.mkv", []string{path}, nil)
	if err != nil {
		t.Fatalf("CutMatches: %v", err)
	}
	if len(inclusions) != 1 || inclusions[0].Name != "b.mp3" {
		t.Errorf("inclusions = %+v, want single match from b.mp3", inclusions)
	}
}

func TestCutMatchesSortedAscendingByScore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.pck")
	writePack(t, path,
		pack.Entry{Name: "a.mp3", Fingerprint: []uint32{1}},
		pack.Entry{Name: "b.mp3", Fingerprint: []uint32{2}},
	)

	scores := map[uint32]float64{1: 0.95, 2: 0.4}
	e := NewEngine(stubFingerprinter{words: []uint32{9}}, fingerprint.DefaultConfig(),
		WithMatchFn(func(input, reference []uint32, cfg fingerprint.Config) ([]fingerprint.Segment, error) {
			return []fingerprint.Segment{{Score: scores[reference[0]]}}, nil
		}),
		WithParallel(1))

	inclusions, _, err := e.CutMatches(context.Background(), "in.mkv", []string{path}, nil)
	if err != nil {
		t.Fatalf("CutMatches: %v", err)
	}
	if len(inclusions) != 2 {
		t.Fatalf("got %d matches, want 2", len(inclusions))
	}
	if inclusions[0].Segment.Score > inclusions[1].Segment.Score {
		t.Errorf("scores not ascending: %v then %v",
			inclusions[0].Segment.Score, inclusions[1].Segment.Score)
	}
}
