package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alnah/go-adcut/internal/config"
	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/progress"
	"github.com/alnah/go-adcut/internal/session"
)

// Shared test doubles for CLI command tests.

type fakeResolver struct {
	tools ffmpeg.Tools
	err   error
}

func (f fakeResolver) Resolve(func(string) string) (ffmpeg.Tools, error) {
	return f.tools, f.err
}

type fakeConfigLoader struct {
	cfg config.Config
	err error
}

func (f fakeConfigLoader) Load() (config.Config, error) {
	return f.cfg, f.err
}

type fakeCalc struct {
	words []uint32
	err   error
}

func (f fakeCalc) Fingerprint(context.Context, string) ([]uint32, error) {
	return f.words, f.err
}

type fakeCalcFactory struct {
	calc Fingerprinter
}

func (f fakeCalcFactory) NewCalculator(string, fingerprint.Config) Fingerprinter {
	return f.calc
}

type fakeMediaTool struct {
	duration float64
}

func (f fakeMediaTool) Duration(context.Context, string) (float64, error) {
	return f.duration, nil
}

func (f fakeMediaTool) Keyframes(context.Context, string) ([]float64, error) {
	return nil, nil
}

func (f fakeMediaTool) ExtractFrames(context.Context, string, string, ffmpeg.StreamRange) error {
	return nil
}

type fakeMediaToolFactory struct {
	tool session.MediaTool
}

func (f fakeMediaToolFactory) NewMediaTool(ffmpeg.Tools) session.MediaTool {
	return f.tool
}

type nopReporterFactory struct{}

func (nopReporterFactory) NewReporter(io.Writer) progress.Reporter {
	return progress.Nop{}
}

// recordReporter captures warnings for assertions.
type recordReporter struct {
	progress.Nop
	warnings []string
}

func (r *recordReporter) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

type recordReporterFactory struct {
	reporter *recordReporter
}

func (f recordReporterFactory) NewReporter(io.Writer) progress.Reporter {
	return f.reporter
}

type scriptPrompt struct {
	lines []string
}

func (p *scriptPrompt) Readline() (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

type fakePromptFactory struct {
	lines []string
}

func (f fakePromptFactory) NewPrompt() (session.LineReader, func() error, error) {
	return &scriptPrompt{lines: f.lines}, func() error { return nil }, nil
}

type fakeSampleReader struct {
	samples map[string][]float32
	err     error
}

func (f fakeSampleReader) ReadSamples(_ context.Context, _, path string, _, _ int) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.samples[path], nil
}
