package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/library"
)

// UpdateCmd creates the update-fingerprints command.
// The env parameter provides injectable dependencies for testing.
func UpdateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "update-fingerprints <dir>...",
		Short: "Refresh the fingerprint caches of reference directories",
		Long: `Refresh the fingerprint caches of reference directories.

Each directory gets a .pck sidecar file next to it holding one fingerprint
per media file. Only files missing from the cache are fingerprinted;
entries for files that no longer exist are kept.`,
		Example: `  adcut update-fingerprints refs/ads
  adcut update-fingerprints refs/ads refs/jingles`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), env, args)
		},
	}
}

// runUpdate handles the update-fingerprints command.
func runUpdate(ctx context.Context, env *Env, dirs []string) error {
	tools, err := env.Resolver.Resolve(env.Getenv)
	if err != nil {
		return err
	}

	calc := env.CalculatorFactory.NewCalculator(tools.FFmpeg, fingerprint.DefaultConfig())
	reporter := env.ReporterFactory.NewReporter(env.Stderr)
	if banner := ffmpeg.CheckVersion(ctx, tools.FFmpeg); banner == "" {
		reporter.Warnf("cannot determine ffmpeg version at %q", tools.FFmpeg)
	}

	updater := library.NewUpdater(calc, reporter)
	if err := updater.Update(ctx, dirs); err != nil {
		return fmt.Errorf("update fingerprints: %w", err)
	}
	return nil
}
