package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"tunecast/internal/history"
	"tunecast/internal/media/encode"
	"tunecast/internal/media/tags"
	"tunecast/internal/metadata"
	"tunecast/internal/pipeline"
	"tunecast/internal/testsupport"
	"tunecast/internal/youtube"
)

type stubEncoder struct {
	result encode.Result
	err    error
	calls  int
	last   [3]string
}

func (s *stubEncoder) Encode(_ context.Context, audioPath, imagePath, outputPath string) (encode.Result, error) {
	s.calls++
	s.last = [3]string{audioPath, imagePath, outputPath}
	if s.err != nil {
		return encode.Result{}, s.err
	}
	result := s.result
	if result.OutputPath == "" {
		result.OutputPath = outputPath
	}
	return result, nil
}

type stubUploader struct {
	videoID string
	err     error
	calls   int
	lastJob youtube.UploadJob
}

func (s *stubUploader) Upload(_ context.Context, job youtube.UploadJob) (string, error) {
	s.calls++
	s.lastJob = job
	if s.err != nil {
		return "", s.err
	}
	return s.videoID, nil
}

func newFormatter() *metadata.Formatter {
	return metadata.New(metadata.Config{
		TitleVars:    []string{"artist", "title"},
		Separator:    " - ",
		AddMetadata:  true,
		DefaultTitle: "Untitled upload",
	})
}

func trackTags() tags.List {
	return tags.List{
		{Raw: "artist", Name: "artist", Display: "Artist", Value: tags.Scalar("Aphex Twin")},
		{Raw: "title", Name: "title", Display: "Title", Value: tags.Scalar("Avril 14th")},
	}
}

func TestRunEncodesUploadsAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrivacy("unlisted"))
	store := testsupport.MustOpenStore(t, cfg)

	encoder := &stubEncoder{result: encode.Result{DurationSeconds: 125, Tags: trackTags()}}
	uploader := &stubUploader{videoID: "vid-123"}

	p, err := pipeline.New(cfg, slog.Default(), encoder, uploader, newFormatter(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	result, err := p.Run(ctx, pipeline.Request{
		AudioPath:  "/music/avril.flac",
		ImagePath:  "/art/cover.png",
		Keywords:   []string{"ambient"},
		CategoryID: "10",
		Privacy:    cfg.Privacy,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if encoder.calls != 1 || uploader.calls != 1 {
		t.Fatalf("expected one encode and one upload, got %d/%d", encoder.calls, uploader.calls)
	}
	if !result.Uploaded || result.VideoID != "vid-123" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if result.Title != "Aphex Twin - Avril 14th" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if uploader.lastJob.Privacy != "unlisted" || uploader.lastJob.CategoryID != "10" {
		t.Fatalf("unexpected upload job: %#v", uploader.lastJob)
	}

	rec, err := store.GetByID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec == nil || rec.Status != history.StatusUploaded || rec.VideoID != "vid-123" {
		t.Fatalf("unexpected history record: %#v", rec)
	}
}

func TestRunDefaultsOutputToStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	encoder := &stubEncoder{result: encode.Result{DurationSeconds: 10}}
	uploader := &stubUploader{videoID: "vid"}

	p, err := pipeline.New(cfg, slog.Default(), encoder, uploader, newFormatter(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := p.Run(context.Background(), pipeline.Request{
		AudioPath: "/music/evening mix.mp3",
		ImagePath: "/art/cover.png",
		Privacy:   "private",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := filepath.Join(cfg.StagingDir, "evening mix.mp4")
	if result.OutputPath != want {
		t.Fatalf("expected output %q, got %q", want, result.OutputPath)
	}
	if encoder.last[2] != want {
		t.Fatalf("encoder received output %q", encoder.last[2])
	}
}

func TestRunGenerateOnlySkipsUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	encoder := &stubEncoder{result: encode.Result{DurationSeconds: 10, Tags: trackTags()}}
	uploader := &stubUploader{videoID: "vid"}

	p, err := pipeline.New(cfg, slog.Default(), encoder, uploader, newFormatter(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	result, err := p.Run(ctx, pipeline.Request{
		AudioPath:    "/music/track.mp3",
		ImagePath:    "/art/cover.png",
		Privacy:      "unlisted",
		GenerateOnly: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if uploader.calls != 0 {
		t.Fatalf("expected no upload, got %d", uploader.calls)
	}
	if result.Uploaded || result.VideoID != "" {
		t.Fatalf("unexpected result: %#v", result)
	}

	rec, err := store.GetByID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec == nil || rec.Status != history.StatusEncoded {
		t.Fatalf("expected encoded record, got %#v", rec)
	}
}

func TestRunUploadFailureMarksRecordFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	encoder := &stubEncoder{result: encode.Result{DurationSeconds: 10}}
	uploader := &stubUploader{err: errors.New("upload: too many upload retries")}

	p, err := pipeline.New(cfg, slog.Default(), encoder, uploader, newFormatter(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = p.Run(ctx, pipeline.Request{
		AudioPath: "/music/track.mp3",
		ImagePath: "/art/cover.png",
		Privacy:   "unlisted",
	})
	if err == nil {
		t.Fatal("expected upload error")
	}

	records, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Status != history.StatusFailed {
		t.Fatalf("expected failed record, got %q", records[0].Status)
	}
	if records[0].ErrorMessage == "" {
		t.Fatal("expected error text on record")
	}
}

func TestRunEncodeFailureLeavesNoRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	encoder := &stubEncoder{err: errors.New("ffmpeg encode: exit status 1")}
	uploader := &stubUploader{videoID: "vid"}

	p, err := pipeline.New(cfg, slog.Default(), encoder, uploader, newFormatter(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if _, err := p.Run(ctx, pipeline.Request{
		AudioPath: "/music/track.mp3",
		ImagePath: "/art/cover.png",
		Privacy:   "unlisted",
	}); err == nil {
		t.Fatal("expected encode error")
	}
	if uploader.calls != 0 {
		t.Fatalf("expected no upload after encode failure, got %d", uploader.calls)
	}

	records, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
