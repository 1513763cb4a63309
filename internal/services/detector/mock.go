package detector

import (
    "context"
    "os"
    "path/filepath"
    "strings"
    "time"

    "langid/internal/domain"
)

// Mock detects from the file name instead of the audio: names containing a
// language hint get that language at high confidence, everything else falls
// back to low-confidence English. Enabled via USE_MOCK_DETECTOR for tests
// and machines without a model.
type Mock struct {
    ModelName string
}

func (m Mock) Detect(_ context.Context, inputPath string) (*domain.DetectionResult, error) {
    start := time.Now()

    info, err := os.Stat(inputPath)
    if err != nil {
        return nil, &domain.DetectError{Kind: domain.DetectDecode, Err: err}
    }

    name := strings.ToLower(filepath.Base(inputPath))
    lang, prob := "en", 0.6
    switch {
    case strings.Contains(name, "fr"):
        lang, prob = "fr", 0.95
    case strings.Contains(name, "en"):
        lang, prob = "en", 0.95
    }

    // 16 kHz mono s16le payload past the 44-byte RIFF header
    var duration float64
    if size := info.Size(); size > 44 {
        duration = float64(size-44) / 32000.0
    }

    model := m.ModelName
    if model == "" {
        model = "mock"
    }
    return &domain.DetectionResult{
        LanguageRaw:    lang,
        LanguageMapped: MapLanguage(lang),
        Probability:    prob,
        ProcessingMS:   time.Since(start).Milliseconds(),
        ModelName:      model,
        AudioDurationS: duration,
    }, nil
}
