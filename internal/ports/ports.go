package ports

import (
    "context"

    "langid/internal/domain"
)

// Detector is the external language-identification capability. Implementations
// must be safe to call repeatedly with the same input.
type Detector interface {
    Detect(ctx context.Context, inputPath string) (*domain.DetectionResult, error)
}

// MetricsSink receives observability events from the pipeline and workers.
// All calls are fire-and-forget and must not block.
type MetricsSink interface {
    JobProcessed(status domain.JobStatus)
    ObserveProcessingSeconds(seconds float64)
    ObserveAudioSeconds(seconds float64)
    ObserveInferenceMillis(ms float64)
    SetActiveWorkers(n int)
    AddRunningJobs(delta int)
    DecodeFailure()
    SetLanguageProbability(lang string, prob float64)
}
