package domain

import "time"

// Core domain models. API response shapes live in the HTTP adapter;
// keep these decoupled where helpful.

type JobStatus string

const (
    StatusQueued    JobStatus = "queued"
    StatusRunning   JobStatus = "running"
    StatusSucceeded JobStatus = "succeeded"
    StatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur.
func (s JobStatus) Terminal() bool {
    return s == StatusSucceeded || s == StatusFailed
}

// Job is one submitted audio clip tracked from submission to terminal outcome.
// Result holds the serialized detection payload and is set only on success.
// Attempts counts completed processing attempts; it is bumped when an attempt
// commits its outcome, never at claim time.
type Job struct {
    ID        string
    Status    JobStatus
    Progress  int
    InputPath string
    Result    []byte
    Error     string
    Attempts  int
    CreatedAt time.Time
    UpdatedAt time.Time
}

// DetectionResult is the payload produced by the detection capability.
type DetectionResult struct {
    LanguageRaw       string  `json:"language_raw"`
    LanguageMapped    string  `json:"language_mapped"`
    Probability       float64 `json:"probability"`
    TranscriptSnippet string  `json:"transcript_snippet,omitempty"`
    ProcessingMS      int64   `json:"processing_ms"`
    ModelName         string  `json:"model"`
    AudioDurationS    float64 `json:"audio_duration_s"`
}
