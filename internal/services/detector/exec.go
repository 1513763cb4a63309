package detector

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "os/exec"
    "strings"
    "time"

    "langid/internal/domain"
)

// Command shells out to an external detector binary. The command receives the
// audio path as its final argument and prints a single JSON object on stdout:
// a DetectionResult on success, or {"error": ..., "error_message": ...} when
// the input could not be decoded or inference failed.
type Command struct {
    // Argv is the command and its fixed arguments, e.g.
    // ["langid-detect", "--model", "small"].
    Argv []string
}

// wire mirrors the detector's stdout contract; result and error fields share
// one object so a single decode handles both shapes.
type wire struct {
    domain.DetectionResult
    ErrorKind    string `json:"error,omitempty"`
    ErrorMessage string `json:"error_message,omitempty"`
}

func (c Command) Detect(ctx context.Context, inputPath string) (*domain.DetectionResult, error) {
    if len(c.Argv) == 0 {
        return nil, &domain.DetectError{Kind: domain.DetectInference, Err: fmt.Errorf("no detector command configured")}
    }
    start := time.Now()

    args := append(append([]string{}, c.Argv[1:]...), inputPath)
    cmd := exec.CommandContext(ctx, c.Argv[0], args...)
    var stdout, stderr bytes.Buffer
    cmd.Stdout = &stdout
    cmd.Stderr = &stderr

    runErr := cmd.Run()

    var out wire
    if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
        if runErr != nil {
            return nil, &domain.DetectError{Kind: domain.DetectInference, Err: fmt.Errorf("detector command: %w: %s", runErr, strings.TrimSpace(stderr.String()))}
        }
        return nil, &domain.DetectError{Kind: domain.DetectInference, Err: fmt.Errorf("decode detector output: %w", err)}
    }

    if out.ErrorKind != "" {
        kind := domain.DetectInference
        if out.ErrorKind == "InvalidAudioError" {
            kind = domain.DetectDecode
        }
        msg := out.ErrorMessage
        if msg == "" {
            msg = out.ErrorKind
        }
        return nil, &domain.DetectError{Kind: kind, Err: fmt.Errorf("%s", msg)}
    }
    if runErr != nil {
        return nil, &domain.DetectError{Kind: domain.DetectInference, Err: fmt.Errorf("detector command: %w", runErr)}
    }

    res := out.DetectionResult
    if res.LanguageMapped == "" {
        res.LanguageMapped = MapLanguage(res.LanguageRaw)
    }
    if res.ProcessingMS == 0 {
        res.ProcessingMS = time.Since(start).Milliseconds()
    }
    return &res, nil
}
