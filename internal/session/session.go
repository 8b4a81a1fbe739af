// Package session implements the interactive cue curation loop: a
// line-oriented command interpreter over a sorted cue list, backed by the
// media tools for preview frame extraction.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alnah/go-adcut/internal/ffmpeg"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/format"
	"github.com/alnah/go-adcut/internal/match"
)

// MediaTool is the subset of the media toolchain the session drives.
type MediaTool interface {
	Duration(ctx context.Context, input string) (float64, error)
	Keyframes(ctx context.Context, input string) ([]float64, error)
	ExtractFrames(ctx context.Context, input, outDir string, r ffmpeg.StreamRange) error
}

// LineReader yields one command line per call. readline.Instance satisfies
// it.
type LineReader interface {
	Readline() (string, error)
}

// Session holds the interactive state: the cue list under curation and the
// match lists that seeded it.
type Session struct {
	tool       MediaTool
	input      string
	scratchDir string
	duration   float64
	cues       []float64
	inclusions []match.SegmentMatch
	exclusions []match.SegmentMatch
	config     fingerprint.Config
	out        io.Writer
}

// New probes the input's duration and starts a session with the cue list
// seeded to the file bounds.
func New(ctx context.Context, tool MediaTool, input, scratchDir string, inclusions, exclusions []match.SegmentMatch, cfg fingerprint.Config, out io.Writer) (*Session, error) {
	duration, err := tool.Duration(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", input, err)
	}
	return &Session{
		tool:       tool,
		input:      input,
		scratchDir: scratchDir,
		duration:   duration,
		cues:       []float64{0, duration},
		inclusions: inclusions,
		exclusions: exclusions,
		config:     cfg,
		out:        out,
	}, nil
}

// Cues returns the current cue list in seconds.
func (s *Session) Cues() []float64 {
	return s.cues
}

// Run executes the command loop until exit, end of input, or a fatal
// preview extraction failure. Local errors (bad arguments, unknown
// commands) are printed and the loop continues.
func (s *Session) Run(ctx context.Context, reader LineReader) error {
	for {
		line, err := reader.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "matches":
			s.PrintMatches()
		case "cues":
			s.printCues()
		case "add":
			s.addCue(args)
		case "remove", "rem", "del", "delete":
			s.removeCue(args)
		case "inspect":
			if err := s.inspect(ctx, args); err != nil {
				return err
			}
		case "keys":
			s.printKeyframes(ctx, args)
		case "help":
			s.printHelp()
		default:
			fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
		}
	}
}

// PrintMatches renders both match lists.
func (s *Session) PrintMatches() {
	s.printMatchList("inclusions", s.inclusions)
	s.printMatchList("exclusions", s.exclusions)
}

func (s *Session) printMatchList(title string, matches []match.SegmentMatch) {
	fmt.Fprintf(s.out, "%s (%d)\n", title, len(matches))
	if len(matches) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.AppendHeader(table.Row{"Name", "Start", "End", "Ref Start", "Ref End", "Duration", "Score"})
	for _, m := range matches {
		t.AppendRow(table.Row{
			m.Name,
			format.Timestamp(m.Segment.Start1(s.config)),
			format.Timestamp(m.Segment.End1(s.config)),
			format.Timestamp(m.Segment.Start2(s.config)),
			format.Timestamp(m.Segment.End2(s.config)),
			fmt.Sprintf("%.1fs", m.Segment.Duration(s.config)),
			fmt.Sprintf("%.3f", m.Segment.Score),
		})
	}
	t.Render()
}

func (s *Session) printCues() {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.AppendHeader(table.Row{"#", "Time", "Seconds"})
	for i, cue := range s.cues {
		t.AppendRow(table.Row{i, format.Timestamp(cue), fmt.Sprintf("%.3f", cue)})
	}
	t.Render()
}

// addCue inserts a cue preserving sort order. Duplicates are allowed.
func (s *Session) addCue(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: add <time>")
		return
	}
	cue, err := format.ParseTime(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "bad time %q: %v\n", args[0], err)
		return
	}
	i := sort.SearchFloat64s(s.cues, cue)
	s.cues = append(s.cues, 0)
	copy(s.cues[i+1:], s.cues[i:])
	s.cues[i] = cue
}

func (s *Session) removeCue(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: remove <index>")
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= len(s.cues) {
		fmt.Fprintf(s.out, "no cue at index %q\n", args[0])
		return
	}
	s.cues = append(s.cues[:i], s.cues[i+1:]...)
}

// inspect extracts preview frames for a window around a timestamp into the
// scratch directory. An extraction failure is fatal to the session.
func (s *Session) inspect(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(s.out, "usage: inspect <time> [key|frame|<seconds>]")
		return nil
	}
	center, err := format.ParseTime(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "bad time %q: %v\n", args[0], err)
		return nil
	}

	mode := ""
	if len(args) == 2 {
		mode = args[1]
	}
	r, ok := s.streamRange(center, mode)
	if !ok {
		fmt.Fprintf(s.out, "bad mode %q\n", mode)
		return nil
	}

	if err := os.RemoveAll(s.scratchDir); err != nil {
		return fmt.Errorf("clear scratch dir: %w", err)
	}
	if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	if err := s.tool.ExtractFrames(ctx, s.input, s.scratchDir, r); err != nil {
		return fmt.Errorf("extract preview frames: %w", err)
	}
	fmt.Fprintf(s.out, "frames written to %s\n", s.scratchDir)
	return nil
}

// streamRange maps an inspect mode to an extraction window centered on
// center and clamped to the file bounds.
func (s *Session) streamRange(center float64, mode string) (ffmpeg.StreamRange, bool) {
	switch mode {
	case "":
		start, end := s.clamp(center, 1200)
		return ffmpeg.EveryNSeconds(&start, &end, 60), true
	case "key", "keyframe":
		start, end := s.clamp(center, 20)
		return ffmpeg.KeyframesBetween(&start, &end), true
	case "frame", "all":
		start, end := s.clamp(center, 5)
		return ffmpeg.FramesBetween(&start, &end), true
	default:
		step, err := strconv.ParseFloat(mode, 64)
		if err != nil || step <= 0 {
			return ffmpeg.StreamRange{}, false
		}
		start, end := s.clamp(center, 20*step)
		return ffmpeg.EveryNSeconds(&start, &end, step), true
	}
}

// clamp returns the window [center-half, center+half] restricted to the
// file bounds. The center is clamped first so a timestamp outside the file
// still yields a valid window instead of an inverted one.
func (s *Session) clamp(center, half float64) (float64, float64) {
	center = min(max(center, 0), s.duration)
	start := max(center-half, 0)
	end := min(center+half, s.duration)
	return start, end
}

// printKeyframes lists the keyframes within 30 seconds of a timestamp.
// Unlike inspect, probe failures here stay local.
func (s *Session) printKeyframes(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: keys <time>")
		return
	}
	center, err := format.ParseTime(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "bad time %q: %v\n", args[0], err)
		return
	}
	keyframes, err := s.tool.Keyframes(ctx, s.input)
	if err != nil {
		fmt.Fprintf(s.out, "cannot probe keyframes: %v\n", err)
		return
	}
	for _, kf := range keyframes {
		if kf >= center-30 && kf <= center+30 {
			fmt.Fprintf(s.out, "%s  %.3f\n", format.Timestamp(kf), kf)
		}
	}
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `commands:
  matches                   show the inclusion and exclusion match lists
  cues                      show the cue list
  add <time>                add a cue (seconds or [hh:]mm:ss[.frac])
  remove <index>            remove the cue at the given index
  inspect <time> [mode]     extract preview frames around a timestamp
                            mode: omitted = 1 frame/min over +-20min,
                            key = keyframes over +-20s,
                            frame = every frame over +-5s,
                            <n> = 1 frame every n seconds over +-20n s
  keys <time>               list keyframes within 30s of a timestamp
  exit | quit               leave without saving
`)
}
