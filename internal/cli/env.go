package cli

import (
	"context"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/alnah/go-adcut/internal/audio"
	"github.com/alnah/go-adcut/internal/config"
	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/progress"
	"github.com/alnah/go-adcut/internal/session"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	Resolver          FFmpegResolver
	ConfigLoader      ConfigLoader
	CalculatorFactory CalculatorFactory
	MediaToolFactory  MediaToolFactory
	ReporterFactory   ReporterFactory
	PromptFactory     PromptFactory
	SampleReader      SampleReader
}

// FFmpegResolver locates the ffmpeg and ffprobe binaries.
type FFmpegResolver interface {
	Resolve(getenv func(string) string) (ffmpeg.Tools, error)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Fingerprinter computes the fingerprint of a media file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) ([]uint32, error)
}

// CalculatorFactory creates fingerprint calculators.
type CalculatorFactory interface {
	NewCalculator(ffmpegPath string, cfg fingerprint.Config) Fingerprinter
}

// MediaToolFactory creates media tools for the interactive session.
type MediaToolFactory interface {
	NewMediaTool(tools ffmpeg.Tools) session.MediaTool
}

// ReporterFactory creates progress reporters.
type ReporterFactory interface {
	NewReporter(out io.Writer) progress.Reporter
}

// PromptFactory creates the interactive line reader. The returned close
// function releases the terminal.
type PromptFactory interface {
	NewPrompt() (session.LineReader, func() error, error)
}

// SampleReader decodes a media file into mono PCM samples.
type SampleReader interface {
	ReadSamples(ctx context.Context, ffmpegPath, path string, rate, channels int) ([]float32, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithResolver sets the ffmpeg resolver.
func WithResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.Resolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithCalculatorFactory sets the fingerprint calculator factory.
func WithCalculatorFactory(f CalculatorFactory) EnvOption {
	return func(e *Env) {
		e.CalculatorFactory = f
	}
}

// WithMediaToolFactory sets the media tool factory.
func WithMediaToolFactory(f MediaToolFactory) EnvOption {
	return func(e *Env) {
		e.MediaToolFactory = f
	}
}

// WithReporterFactory sets the progress reporter factory.
func WithReporterFactory(f ReporterFactory) EnvOption {
	return func(e *Env) {
		e.ReporterFactory = f
	}
}

// WithPromptFactory sets the interactive prompt factory.
func WithPromptFactory(f PromptFactory) EnvOption {
	return func(e *Env) {
		e.PromptFactory = f
	}
}

// WithSampleReader sets the PCM sample reader.
func WithSampleReader(r SampleReader) EnvOption {
	return func(e *Env) {
		e.SampleReader = r
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Getenv:            os.Getenv,
		Resolver:          &defaultResolver{},
		ConfigLoader:      &defaultConfigLoader{},
		CalculatorFactory: &defaultCalculatorFactory{},
		MediaToolFactory:  &defaultMediaToolFactory{},
		ReporterFactory:   &defaultReporterFactory{},
		PromptFactory:     &defaultPromptFactory{},
		SampleReader:      &defaultSampleReader{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultResolver implements FFmpegResolver using the ffmpeg package.
type defaultResolver struct{}

func (defaultResolver) Resolve(getenv func(string) string) (ffmpeg.Tools, error) {
	return ffmpeg.Resolve(getenv)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultCalculatorFactory implements CalculatorFactory using the
// fingerprint package.
type defaultCalculatorFactory struct{}

func (defaultCalculatorFactory) NewCalculator(ffmpegPath string, cfg fingerprint.Config) Fingerprinter {
	return fingerprint.NewCalculator(ffmpegPath, cfg)
}

// defaultMediaToolFactory implements MediaToolFactory using the ffmpeg
// package.
type defaultMediaToolFactory struct{}

func (defaultMediaToolFactory) NewMediaTool(tools ffmpeg.Tools) session.MediaTool {
	return ffmpeg.NewTool(tools)
}

// defaultReporterFactory implements ReporterFactory using the progress
// package.
type defaultReporterFactory struct{}

func (defaultReporterFactory) NewReporter(out io.Writer) progress.Reporter {
	return progress.NewBar(out)
}

// defaultPromptFactory implements PromptFactory using readline.
type defaultPromptFactory struct{}

func (defaultPromptFactory) NewPrompt() (session.LineReader, func() error, error) {
	rl, err := readline.New("adcut> ")
	if err != nil {
		return nil, nil, err
	}
	return rl, rl.Close, nil
}

// defaultSampleReader implements SampleReader using the audio package.
type defaultSampleReader struct{}

func (defaultSampleReader) ReadSamples(ctx context.Context, ffmpegPath, path string, rate, channels int) ([]float32, error) {
	return audio.ReadSamples(ctx, ffmpegPath, path, rate, channels)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver    = (*defaultResolver)(nil)
	_ ConfigLoader      = (*defaultConfigLoader)(nil)
	_ CalculatorFactory = (*defaultCalculatorFactory)(nil)
	_ MediaToolFactory  = (*defaultMediaToolFactory)(nil)
	_ ReporterFactory   = (*defaultReporterFactory)(nil)
	_ PromptFactory     = (*defaultPromptFactory)(nil)
	_ SampleReader      = (*defaultSampleReader)(nil)
)
