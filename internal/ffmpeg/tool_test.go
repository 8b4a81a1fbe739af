package ffmpeg

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolveWithHome(t *testing.T) {
	getenv := func(key string) string {
		if key == EnvHome {
			return "/opt/ffmpeg"
		}
		return ""
	}

	tools, err := Resolve(getenv)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpeg = %q, want /opt/ffmpeg/bin/ffmpeg", tools.FFmpeg)
	}
	if tools.FFprobe != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("FFprobe = %q, want /opt/ffmpeg/bin/ffprobe", tools.FFprobe)
	}
}

func TestCheckVersionMissingBinary(t *testing.T) {
	if banner := CheckVersion(context.Background(), "/nonexistent/ffmpeg"); banner != "" {
		t.Errorf("banner = %q, want empty for missing binary", banner)
	}
}

func TestDuration(t *testing.T) {
	var gotBin string
	var gotArgs []string
	tool := NewTool(Tools{FFprobe: "ffprobe"}, WithRunOutput(
		func(ctx context.Context, bin string, args []string) (string, error) {
			gotBin = bin
			gotArgs = args
			return "123.456\n", nil
		}))

	dur, err := tool.Duration(context.Background(), "in.mkv")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if dur != 123.456 {
		t.Errorf("duration = %v, want 123.456", dur)
	}
	if gotBin != "ffprobe" {
		t.Errorf("bin = %q, want ffprobe", gotBin)
	}
	want := []string{"-i", "in.mkv", "-show_entries", "format=duration", "-v", "quiet", "-of", "csv=p=0"}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Errorf("args = %v, want %v", gotArgs, want)
	}
}

func TestDurationParseError(t *testing.T) {
	tool := NewTool(Tools{}, WithRunOutput(
		func(ctx context.Context, bin string, args []string) (string, error) {
			return "N/A\n", nil
		}))

	if _, err := tool.Duration(context.Background(), "in.mkv"); !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestKeyframes(t *testing.T) {
	tool := NewTool(Tools{FFprobe: "ffprobe"}, WithRunLines(
		func(ctx context.Context, bin string, args []string, onLine func(string) error) error {
			for _, line := range []string{"0.000000", "2.502500", "5.005000", ""} {
				if err := onLine(line); err != nil {
					return err
				}
			}
			return nil
		}))

	keyframes, err := tool.Keyframes(context.Background(), "in.mkv")
	if err != nil {
		t.Fatalf("Keyframes: %v", err)
	}
	want := []float64{0, 2.5025, 5.005}
	if !reflect.DeepEqual(keyframes, want) {
		t.Errorf("keyframes = %v, want %v", keyframes, want)
	}
}

func TestKeyframesBadTimestamp(t *testing.T) {
	tool := NewTool(Tools{}, WithRunLines(
		func(ctx context.Context, bin string, args []string, onLine func(string) error) error {
			return onLine("not-a-number")
		}))

	if _, err := tool.Keyframes(context.Background(), "in.mkv"); !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestExtractFramesArgs(t *testing.T) {
	start, end := 10.0, 20.0
	var gotArgs []string
	tool := NewTool(Tools{FFmpeg: "ffmpeg"}, WithRun(
		func(ctx context.Context, bin string, args []string) error {
			gotArgs = args
			return nil
		}))

	r := EveryNSeconds(&start, &end, 2)
	if err := tool.ExtractFrames(context.Background(), "in.mkv", "/tmp/frames", r); err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{
		"-ss 10.0000",
		"-to 20.0000",
		"-skip_frame none",
		"-copyts -i in.mkv",
		"-vf fps=0.500",
		"-f image2",
		"-frame_pts 1",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/frames/%09d.jpg" {
		t.Errorf("output pattern = %q", gotArgs[len(gotArgs)-1])
	}
}

func TestExtractFramesFailure(t *testing.T) {
	tool := NewTool(Tools{}, WithRun(
		func(ctx context.Context, bin string, args []string) error {
			return ErrProcessFailed
		}))

	err := tool.ExtractFrames(context.Background(), "in.mkv", "/tmp/frames", FramesBetween(nil, nil))
	if !errors.Is(err, ErrProcessFailed) {
		t.Errorf("error = %v, want ErrProcessFailed", err)
	}
}

func TestStreamRangeConstructors(t *testing.T) {
	start := 1.0
	key := KeyframesBetween(&start, nil)
	if key.SkipFrames != "nokey" || key.FrameRate != 0 {
		t.Errorf("KeyframesBetween = %+v", key)
	}
	all := FramesBetween(nil, nil)
	if all.SkipFrames != "none" || all.Start != nil || all.End != nil {
		t.Errorf("FramesBetween = %+v", all)
	}
	sampled := EveryNSeconds(nil, nil, 60)
	if sampled.FrameRate != 1.0/60 {
		t.Errorf("EveryNSeconds frame rate = %v, want %v", sampled.FrameRate, 1.0/60)
	}
}
