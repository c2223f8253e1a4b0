package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/youtube/v3"
)

const defaultUploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos"

// statusError reports a non-2xx HTTP response from the upload endpoint.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upload request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// session drives one resumable upload against the YouTube upload endpoint.
type session struct {
	client   *http.Client
	endpoint string

	file io.ReaderAt
	size int64

	// url is the session URL returned by the start request; empty until the
	// session has been opened.
	url string
}

// stepResult describes the outcome of one protocol step.
type stepResult struct {
	// done is true once the service returned the final video resource.
	done bool
	// videoID is set when done.
	videoID string
	// nextOffset is the next byte to send when not done.
	nextOffset int64
}

// start opens the resumable session by posting the video metadata. The
// service answers with the session URL in the Location header.
func (s *session) start(ctx context.Context, job UploadJob) error {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       job.Title,
			Description: job.Description,
			CategoryId:  job.CategoryID,
			Tags:        job.Tags,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: job.Privacy},
	}
	body, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("encode video metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?uploadType=resumable&part=snippet,status", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("start upload: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(s.size, 10))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("start upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return errors.New("start upload: response missing session location")
	}
	s.url = location
	return nil
}

// sendChunk uploads the chunk beginning at offset and interprets the
// service's resumable-protocol response.
func (s *session) sendChunk(ctx context.Context, offset, chunkSize int64) (stepResult, error) {
	end := offset + chunkSize
	if end > s.size {
		end = s.size
	}
	length := end - offset

	reader := io.NewSectionReader(s.file, offset, length)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, reader)
	if err != nil {
		return stepResult{}, fmt.Errorf("send chunk: new request: %w", err)
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, end-1, s.size))

	resp, err := s.client.Do(req)
	if err != nil {
		return stepResult{}, fmt.Errorf("send chunk: %w", err)
	}
	defer resp.Body.Close()
	return s.interpret(resp, end)
}

// queryOffset asks the session how many bytes it has committed so a retry
// can resume from server state rather than guessing.
func (s *session) queryOffset(ctx context.Context) (stepResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, nil)
	if err != nil {
		return stepResult{}, fmt.Errorf("query offset: new request: %w", err)
	}
	req.Header.Set("Content-Range", fmt.Sprintf("bytes */%d", s.size))

	resp, err := s.client.Do(req)
	if err != nil {
		return stepResult{}, fmt.Errorf("query offset: %w", err)
	}
	defer resp.Body.Close()
	return s.interpret(resp, 0)
}

// interpret decodes a resumable-protocol response. 308 means the service
// committed bytes and wants more; 200/201 carries the final video resource.
func (s *session) interpret(resp *http.Response, fallbackOffset int64) (stepResult, error) {
	switch resp.StatusCode {
	case http.StatusPermanentRedirect: // 308 Resume Incomplete
		offset := fallbackOffset
		if committed, ok := parseRangeEnd(resp.Header.Get("Range")); ok {
			offset = committed + 1
		}
		return stepResult{nextOffset: offset}, nil
	case http.StatusOK, http.StatusCreated:
		var video youtube.Video
		if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
			return stepResult{}, fmt.Errorf("decode upload response: %w", err)
		}
		if video.Id == "" {
			return stepResult{}, errors.New("upload response missing video id")
		}
		return stepResult{done: true, videoID: video.Id}, nil
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return stepResult{}, &statusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
}

// parseRangeEnd extracts the final committed byte from a "bytes=0-N" Range
// header.
func parseRangeEnd(header string) (int64, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	header = strings.TrimPrefix(header, "bytes=")
	_, endStr, ok := strings.Cut(header, "-")
	if !ok {
		return 0, false
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return 0, false
	}
	return end, true
}
