// Package match locates reference fingerprints inside an input file's
// fingerprint, loading reference packs and matching entries concurrently.
package match

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/pack"
	"github.com/alnah/go-adcut/internal/progress"
)

// SegmentMatch is a matched segment tagged with the reference it came from.
type SegmentMatch struct {
	Name    string
	Segment fingerprint.Segment
}

// Fingerprinter computes the fingerprint of a media file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) ([]uint32, error)
}

// matchFn matches a reference fingerprint against an input fingerprint.
type matchFn func(input, reference []uint32, cfg fingerprint.Config) ([]fingerprint.Segment, error)

// Engine matches an input file against inclusion and exclusion reference
// packs.
type Engine struct {
	calc     Fingerprinter
	config   fingerprint.Config
	reporter progress.Reporter
	match    matchFn
	parallel int
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithParallel caps the number of concurrent per-entry matches.
func WithParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallel = n
		}
	}
}

// WithMatchFn overrides the fingerprint matcher (for testing).
func WithMatchFn(fn matchFn) Option {
	return func(e *Engine) { e.match = fn }
}

// NewEngine creates an Engine fingerprinting inputs with calc.
func NewEngine(calc Fingerprinter, cfg fingerprint.Config, opts ...Option) *Engine {
	e := &Engine{
		calc:     calc,
		config:   cfg,
		reporter: progress.Nop{},
		match:    fingerprint.Match,
		parallel: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CutMatches fingerprints the input file and matches it against every entry
// of the inclusion and exclusion packs. A pack that fails to load and an
// entry that fails to match are reported as warnings and contribute no
// segments; failing to fingerprint the input aborts the whole call. Both
// result lists are sorted ascending by score.
func (e *Engine) CutMatches(ctx context.Context, input string, include, exclude []string) ([]SegmentMatch, []SegmentMatch, error) {
	e.reporter.Start(int64(len(include)+len(exclude))+1, "loading references")
	defer e.reporter.Finish()

	var inputWords []uint32
	includePacks := make([]*pack.File, len(include))
	excludePacks := make([]*pack.File, len(exclude))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		words, err := e.calc.Fingerprint(gctx, input)
		if err != nil {
			return err
		}
		inputWords = words
		e.reporter.Add(1)
		return nil
	})
	for i, path := range include {
		i, path := i, path
		g.Go(func() error {
			includePacks[i] = e.loadPack(path)
			return nil
		})
	}
	for i, path := range exclude {
		i, path := i, path
		g.Go(func() error {
			excludePacks[i] = e.loadPack(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := countEntries(includePacks) + countEntries(excludePacks)
	e.reporter.Start(int64(total), "matching")

	inclusions, err := e.matchPacks(ctx, inputWords, includePacks)
	if err != nil {
		return nil, nil, err
	}
	exclusions, err := e.matchPacks(ctx, inputWords, excludePacks)
	if err != nil {
		return nil, nil, err
	}
	return inclusions, exclusions, nil
}

// loadPack loads one pack file; a failure is warned and yields nil so the
// pack simply drops out of the results.
func (e *Engine) loadPack(path string) *pack.File {
	defer e.reporter.Add(1)
	p, err := pack.Load(path)
	if err != nil {
		e.reporter.Warnf("cannot load pack %s: %v", path, err)
		return nil
	}
	return p
}

// matchPacks matches every entry of the packs against the input
// fingerprint with bounded parallelism.
func (e *Engine) matchPacks(ctx context.Context, input []uint32, packs []*pack.File) ([]SegmentMatch, error) {
	type result struct {
		name     string
		segments []fingerprint.Segment
	}

	var entries []pack.Entry
	for _, p := range packs {
		if p == nil {
			continue
		}
		entries = append(entries, p.Entries...)
	}

	results := make([]result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.parallel)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			segments, err := e.match(input, entry.Fingerprint, e.config)
			if err != nil {
				e.reporter.Warnf("cannot match %s: %v", entry.Name, err)
				segments = nil
			}
			results[i] = result{name: entry.Name, segments: segments}
			e.reporter.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []SegmentMatch
	for _, r := range results {
		for _, seg := range r.segments {
			matches = append(matches, SegmentMatch{Name: r.name, Segment: seg})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Segment.Score < matches[j].Segment.Score
	})
	return matches, nil
}

func countEntries(packs []*pack.File) int {
	n := 0
	for _, p := range packs {
		if p == nil {
			continue
		}
		n += len(p.Entries)
	}
	return n
}
