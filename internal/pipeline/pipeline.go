package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"tunecast/internal/config"
	"tunecast/internal/history"
	"tunecast/internal/media/encode"
	"tunecast/internal/metadata"
	"tunecast/internal/youtube"
)

// Encoder produces the video file for a run.
type Encoder interface {
	Encode(ctx context.Context, audioPath, imagePath, outputPath string) (encode.Result, error)
}

// Uploader sends a finished video to YouTube and returns the video ID.
type Uploader interface {
	Upload(ctx context.Context, job youtube.UploadJob) (string, error)
}

// Request describes one run.
type Request struct {
	AudioPath string
	ImagePath string
	// OutputPath overrides where the video is written. Empty means a file
	// named after the audio input inside the staging directory.
	OutputPath string
	Keywords   []string
	CategoryID string
	Privacy    string
	// GenerateOnly stops after encoding, leaving the video on disk.
	GenerateOnly bool
}

// Result reports what a run produced.
type Result struct {
	RunID       string
	OutputPath  string
	Title       string
	Description string
	VideoID     string
	Uploaded    bool
}

// Pipeline wires the encoder, formatter, uploader, and history store into a
// single run.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	encoder   Encoder
	uploader  Uploader
	formatter *metadata.Formatter
	store     *history.Store
	lock      *flock.Flock
}

// New constructs a Pipeline. The uploader may be nil only when every run is
// generate-only.
func New(cfg *config.Config, logger *slog.Logger, encoder Encoder, uploader Uploader, formatter *metadata.Formatter, store *history.Store) (*Pipeline, error) {
	if cfg == nil || encoder == nil || formatter == nil || store == nil {
		return nil, errors.New("pipeline requires config, encoder, formatter, and store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lockPath := filepath.Join(cfg.StagingDir, "tunecast.lock")
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		encoder:   encoder,
		uploader:  uploader,
		formatter: formatter,
		store:     store,
		lock:      flock.New(lockPath),
	}, nil
}

// Run executes one encode-and-upload pass.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	locked, err := p.lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire staging lock: %w", err)
	}
	if !locked {
		return Result{}, errors.New("another tunecast run is already using the staging directory")
	}
	defer func() { _ = p.lock.Unlock() }()

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = p.defaultOutputPath(req.AudioPath)
	}

	encoded, err := p.encoder.Encode(ctx, req.AudioPath, req.ImagePath, outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("encode: %w", err)
	}

	title, description := p.formatter.Format(encoded.Tags, encoded.DurationSeconds)

	rec, err := p.store.Begin(ctx, history.Record{
		AudioPath:       req.AudioPath,
		ImagePath:       req.ImagePath,
		OutputPath:      encoded.OutputPath,
		DurationSeconds: encoded.DurationSeconds,
		Title:           title,
		Privacy:         req.Privacy,
	})
	if err != nil {
		return Result{}, fmt.Errorf("record run: %w", err)
	}

	result := Result{
		RunID:       rec.ID,
		OutputPath:  encoded.OutputPath,
		Title:       title,
		Description: description,
	}

	if req.GenerateOnly {
		p.logger.Info("generate-only run complete", "output", encoded.OutputPath, "title", title)
		return result, nil
	}
	if p.uploader == nil {
		return Result{}, errors.New("pipeline has no uploader configured")
	}

	videoID, err := p.uploader.Upload(ctx, youtube.UploadJob{
		FilePath:    encoded.OutputPath,
		Title:       title,
		Description: description,
		Tags:        req.Keywords,
		CategoryID:  req.CategoryID,
		Privacy:     req.Privacy,
	})
	if err != nil {
		if markErr := p.store.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			p.logger.Warn("failed to record upload error", "run", rec.ID, "error", markErr)
		}
		return Result{}, err
	}

	if err := p.store.MarkUploaded(ctx, rec.ID, videoID); err != nil {
		p.logger.Warn("failed to record upload success", "run", rec.ID, "error", err)
	}

	result.VideoID = videoID
	result.Uploaded = true
	return result, nil
}

// defaultOutputPath names the video after the audio input, inside staging.
func (p *Pipeline) defaultOutputPath(audioPath string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "output"
	}
	return filepath.Join(p.cfg.StagingDir, base+".mp4")
}
