package encode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"tunecast/internal/media/ffprobe"
	"tunecast/internal/media/tags"
)

var commandContext = exec.CommandContext

// Result describes a finished encode.
type Result struct {
	// OutputPath is the path of the generated MP4 file.
	OutputPath string
	// DurationSeconds is the audio duration the video was sized to.
	DurationSeconds float64
	// Tags holds the metadata read from the audio file.
	Tags tags.List
	// AudioSize and ImageSize are the input file sizes in bytes.
	AudioSize int64
	ImageSize int64
}

// Encoder invokes ffmpeg and ffprobe to produce the video file.
type Encoder struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
	verbose bool
	probe   func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// Option customizes an Encoder.
type Option func(*Encoder)

// WithVerbose streams full tool output to the logger.
func WithVerbose(verbose bool) Option {
	return func(e *Encoder) {
		e.verbose = verbose
	}
}

// New constructs an Encoder. Empty binary names fall back to the tools being
// resolved from PATH.
func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger, opts ...Option) *Encoder {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	if logger == nil {
		logger = slog.Default()
	}
	encoder := &Encoder{ffmpeg: ffmpegBinary, ffprobe: ffprobeBinary, logger: logger, probe: ffprobe.Inspect}
	for _, opt := range opts {
		opt(encoder)
	}
	return encoder
}

// Encode produces outputPath from the given audio and image inputs and
// returns the encode result. Both inputs must exist; probe or encode
// failures are terminal.
func (e *Encoder) Encode(ctx context.Context, audioPath, imagePath, outputPath string) (Result, error) {
	audioInfo, err := os.Stat(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("audio file %q: %w", audioPath, err)
	}
	imageInfo, err := os.Stat(imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("image file %q: %w", imagePath, err)
	}
	if strings.TrimSpace(outputPath) == "" {
		return Result{}, errors.New("encode: output path required")
	}

	probe, err := e.probe(ctx, e.ffprobe, audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("probe audio: %w", err)
	}
	seconds, err := probe.DurationSeconds()
	if err != nil {
		return Result{}, fmt.Errorf("audio duration: %w", err)
	}

	list := tags.FromProbe(probe)
	if list.Len() == 0 {
		e.logger.Info("no tags extracted from audio file, continuing")
	} else {
		e.logger.Info("extracted audio tags", "count", list.Len())
	}

	e.logger.Info("encoding video",
		"audio", audioPath,
		"audio_bytes", audioInfo.Size(),
		"image", imagePath,
		"image_bytes", imageInfo.Size(),
		"duration", probe.Format.Duration,
	)

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create output directory: %w", err)
		}
	}

	args := buildArgs(audioPath, imagePath, outputPath, seconds)
	cmd := commandContext(ctx, e.ffmpeg, args...)
	output, err := cmd.CombinedOutput()
	if e.verbose && len(output) > 0 {
		e.logger.Debug("ffmpeg output", "output", string(output))
	}
	if err != nil {
		return Result{}, fmt.Errorf("ffmpeg encode: %w: %s", err, tail(string(output)))
	}

	e.logger.Info("generated video file", "output", outputPath)
	return Result{
		OutputPath:      outputPath,
		DurationSeconds: seconds,
		Tags:            list,
		AudioSize:       audioInfo.Size(),
		ImageSize:       imageInfo.Size(),
	}, nil
}

// buildArgs assembles the fixed ffmpeg pipeline: loop the still image at a
// low frame rate, scale and pad to 1080p, and cut the output at the audio
// duration.
func buildArgs(audioPath, imagePath, outputPath string, seconds float64) []string {
	args := []string{
		"-y",
		"-loop", "1",
		"-framerate", "2",
		"-i", imagePath,
		"-i", audioPath,
	}
	args = append(args, audioCodecArgs(audioPath)...)
	args = append(args,
		"-vf", "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2,format=yuv420p",
		"-c:v", "libx264",
		"-preset", "medium",
		"-tune", "stillimage",
		"-t", strconv.FormatFloat(seconds, 'f', 6, 64),
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}

// audioCodecArgs picks the audio codec for the MP4 container. flac and wav
// don't mux reliably into MP4, so they are re-encoded to high-bitrate MP3.
func audioCodecArgs(audioPath string) []string {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".flac", ".wav":
		return []string{"-c:a", "libmp3lame", "-b:a", "320k"}
	default:
		return []string{"-c:a", "aac", "-b:a", "192k"}
	}
}

// tail returns the last few lines of tool output for error messages.
func tail(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "(no output)"
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
