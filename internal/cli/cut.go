package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/match"
	"github.com/alnah/go-adcut/internal/session"
)

// cutOptions holds the flags of the cut command.
type cutOptions struct {
	include    []string
	exclude    []string
	scratchDir string
}

// CutCmd creates the cut command.
// The env parameter provides injectable dependencies for testing.
func CutCmd(env *Env) *cobra.Command {
	opts := &cutOptions{}

	cmd := &cobra.Command{
		Use:   "cut <input>",
		Short: "Locate reference segments in a media file and curate cut points",
		Long: `Locate reference segments in a media file and curate cut points.

The input is fingerprinted and matched against every entry of the given
inclusion and exclusion packs. Matches seed an interactive session where
cue timestamps can be reviewed, adjusted, and visually confirmed with
preview frames.`,
		Example: `  adcut cut -i refs/ads.pck recording.mkv
  adcut cut -i refs/ads.pck -e refs/intros.pck recording.mkv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCut(cmd.Context(), env, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.include, "include", "i", nil,
		"inclusion pack file (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.exclude, "exclude", "e", nil,
		"exclusion pack file (repeatable)")
	cmd.Flags().StringVar(&opts.scratchDir, "scratch-dir", "",
		"directory for preview frames (default from config)")

	return cmd
}

// runCut handles the cut command.
func runCut(ctx context.Context, env *Env, input string, opts *cutOptions) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, input)
	}
	if len(opts.include) == 0 && len(opts.exclude) == 0 {
		return fmt.Errorf("%w: pass at least one --include or --exclude pack", ErrNoReferences)
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	scratchDir := opts.scratchDir
	if scratchDir == "" {
		scratchDir = cfg.ScratchDir
	}

	tools, err := env.Resolver.Resolve(env.Getenv)
	if err != nil {
		return err
	}

	fpCfg := fingerprint.DefaultConfig()
	calc := env.CalculatorFactory.NewCalculator(tools.FFmpeg, fpCfg)
	reporter := env.ReporterFactory.NewReporter(env.Stderr)
	if banner := ffmpeg.CheckVersion(ctx, tools.FFmpeg); banner == "" {
		reporter.Warnf("cannot determine ffmpeg version at %q", tools.FFmpeg)
	}

	engine := match.NewEngine(calc, fpCfg,
		match.WithReporter(reporter),
		match.WithParallel(cfg.Parallel))
	inclusions, exclusions, err := engine.CutMatches(ctx, input, opts.include, opts.exclude)
	if err != nil {
		return fmt.Errorf("match %s: %w", input, err)
	}

	tool := env.MediaToolFactory.NewMediaTool(tools)
	s, err := session.New(ctx, tool, input, scratchDir, inclusions, exclusions, fpCfg, env.Stdout)
	if err != nil {
		return err
	}
	s.PrintMatches()

	prompt, closePrompt, err := env.PromptFactory.NewPrompt()
	if err != nil {
		return fmt.Errorf("open prompt: %w", err)
	}
	defer func() { _ = closePrompt() }()

	return s.Run(ctx, prompt)
}
