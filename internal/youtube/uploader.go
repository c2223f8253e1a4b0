package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	// maxRetries bounds how many transient failures an upload survives
	// before aborting.
	maxRetries = 10

	// defaultChunkSize is a multiple of the 256 KiB granularity the upload
	// endpoint requires.
	defaultChunkSize = 8 << 20
)

// ErrTooManyRetries is returned when an upload exhausts its retry budget.
var ErrTooManyRetries = errors.New("too many upload retries")

// UploadJob describes one finished video ready for upload. It is not
// modified during the upload.
type UploadJob struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// Uploader drives resumable uploads with retry and backoff.
type Uploader struct {
	client    *http.Client
	logger    *slog.Logger
	endpoint  string
	chunkSize int64
	sleep     func(time.Duration)
	random    func() float64
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithChunkSize overrides the upload chunk size in bytes.
func WithChunkSize(size int64) Option {
	return func(u *Uploader) {
		if size > 0 {
			u.chunkSize = size
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(u *Uploader) {
		if sleep != nil {
			u.sleep = sleep
		}
	}
}

// WithRandom overrides the randomness source for backoff jitter.
func WithRandom(random func() float64) Option {
	return func(u *Uploader) {
		if random != nil {
			u.random = random
		}
	}
}

// WithEndpoint overrides the upload endpoint (useful for tests).
func WithEndpoint(endpoint string) Option {
	return func(u *Uploader) {
		if endpoint != "" {
			u.endpoint = endpoint
		}
	}
}

// NewUploader constructs an Uploader using the given authenticated HTTP
// client.
func NewUploader(client *http.Client, logger *slog.Logger, opts ...Option) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	uploader := &Uploader{
		client:    client,
		logger:    logger,
		endpoint:  defaultUploadEndpoint,
		chunkSize: defaultChunkSize,
		sleep:     time.Sleep,
		random:    rand.Float64,
	}
	for _, opt := range opts {
		opt(uploader)
	}
	return uploader
}

// Upload sends the job's file to YouTube and returns the new video ID.
// Transient failures are retried with randomized exponential backoff; any
// other failure ends the upload immediately.
func (u *Uploader) Upload(ctx context.Context, job UploadJob) (string, error) {
	if !ValidPrivacy(job.Privacy) {
		return "", fmt.Errorf("invalid privacy status %q", job.Privacy)
	}
	file, err := os.Open(job.FilePath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload file: %w", err)
	}

	u.logger.Info("uploading file", "path", job.FilePath, "bytes", info.Size(), "title", job.Title)

	sess := &session{
		client:   u.client,
		endpoint: u.endpoint,
		file:     file,
		size:     info.Size(),
	}

	var (
		attempts int
		offset   int64
	)
	for {
		res, err := u.step(ctx, sess, job, offset)
		if err == nil {
			if res.done {
				u.logger.Info("video uploaded",
					"id", res.videoID,
					"privacy", job.Privacy,
					"url", WatchURL(res.videoID),
				)
				u.logger.Info("the video may take a few minutes to finish processing")
				return res.videoID, nil
			}
			offset = res.nextOffset
			continue
		}

		if !transient(err) {
			return "", fmt.Errorf("upload: %w", err)
		}

		attempts++
		if attempts > maxRetries {
			return "", fmt.Errorf("upload: %w: %w", ErrTooManyRetries, err)
		}
		delay := u.backoff(attempts)
		u.logger.Warn("transient upload error, retrying",
			"attempt", attempts,
			"max_attempts", maxRetries,
			"sleep", delay,
			"error", err,
		)
		u.sleep(delay)

		// Resume from the offset the session has actually committed. A
		// failure here just retries from the last known offset.
		if sess.url != "" {
			if res, err := sess.queryOffset(ctx); err == nil && !res.done {
				offset = res.nextOffset
			} else if err == nil && res.done {
				return res.videoID, nil
			}
		}
	}
}

// step advances the protocol by one request: the start request while no
// session exists, a chunk upload afterwards.
func (u *Uploader) step(ctx context.Context, sess *session, job UploadJob, offset int64) (stepResult, error) {
	if sess.url == "" {
		if err := sess.start(ctx, job); err != nil {
			return stepResult{}, err
		}
		return stepResult{nextOffset: 0}, nil
	}
	return sess.sendChunk(ctx, offset, u.chunkSize)
}

// backoff returns a random delay of at most 2^attempt seconds.
func (u *Uploader) backoff(attempt int) time.Duration {
	maxSleep := math.Pow(2, float64(attempt))
	return time.Duration(u.random() * maxSleep * float64(time.Second))
}

// transient reports whether the error is worth retrying: the network error
// class, or one of the retriable server statuses.
func transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return retriableStatus(statusErr.StatusCode)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retriableStatus(apiErr.Code)
	}

	// Token refresh failures surface through the transport wrapped in a
	// *url.Error. An invalid or revoked grant never heals on retry.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func retriableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, // 500
		http.StatusBadGateway,         // 502
		http.StatusServiceUnavailable, // 503
		http.StatusGatewayTimeout:     // 504
		return true
	}
	return false
}

// WatchURL returns the public watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Upload status values reported by the YouTube Data API.
const (
	UploadStatusUploaded  = "uploaded"
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
	UploadStatusRejected  = "rejected"
	UploadStatusDeleted   = "deleted"
)

// ErrUnknownStatus is returned when the API reports a status this package
// does not recognize.
var ErrUnknownStatus = errors.New("unknown video status")

// CheckStatus looks up the processing status of an uploaded video.
func (u *Uploader) CheckStatus(ctx context.Context, videoID string) (string, error) {
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(u.client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}
	list, err := youtube.NewVideosService(svc).List([]string{"status"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("video status: %w", err)
	}
	if len(list.Items) == 0 {
		return "", fmt.Errorf("video %s not found", videoID)
	}

	switch status := list.Items[0].Status.UploadStatus; status {
	case UploadStatusUploaded, UploadStatusProcessed, UploadStatusFailed, UploadStatusRejected, UploadStatusDeleted:
		return status, nil
	default:
		return "", ErrUnknownStatus
	}
}
