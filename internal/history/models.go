package history

import "time"

// Status represents the lifecycle of a recorded run.
type Status string

const (
	StatusEncoded  Status = "encoded"
	StatusUploaded Status = "uploaded"
	StatusFailed   Status = "failed"
)

// Record is one encode-and-upload run.
type Record struct {
	ID              string
	AudioPath       string
	ImagePath       string
	OutputPath      string
	DurationSeconds float64
	Title           string
	Privacy         string
	VideoID         string
	Status          Status
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
