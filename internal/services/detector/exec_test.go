package detector

import (
    "context"
    "os"
    "path/filepath"
    "runtime"
    "strings"
    "testing"

    "langid/internal/domain"
)

func writeScript(t *testing.T, body string) string {
    t.Helper()
    if runtime.GOOS == "windows" {
        t.Skip("shell scripts not supported on windows")
    }
    path := filepath.Join(t.TempDir(), "detect.sh")
    if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
        t.Fatalf("write script: %v", err)
    }
    return path
}

func TestCommandDetectSuccess(t *testing.T) {
    script := writeScript(t, `echo '{"language_raw":"fr","probability":0.91,"processing_ms":7,"model":"small","audio_duration_s":1.5}'`)
    c := Command{Argv: []string{script}}

    res, err := c.Detect(context.Background(), "/tmp/clip.wav")
    if err != nil {
        t.Fatalf("detect: %v", err)
    }
    if res.LanguageRaw != "fr" || res.Probability != 0.91 {
        t.Fatalf("unexpected result: %+v", res)
    }
    if res.LanguageMapped != "fr" {
        t.Fatalf("language not mapped: %+v", res)
    }
    if res.AudioDurationS != 1.5 {
        t.Fatalf("duration: %+v", res)
    }
}

func TestCommandDetectDecodeFailure(t *testing.T) {
    script := writeScript(t, `echo '{"error":"InvalidAudioError","error_message":"not a RIFF file"}'`)
    c := Command{Argv: []string{script}}

    _, err := c.Detect(context.Background(), "/tmp/clip.wav")
    if err == nil {
        t.Fatal("expected error")
    }
    if !domain.IsDecodeFailure(err) {
        t.Fatalf("expected decode failure, got %v", err)
    }
    if !strings.Contains(err.Error(), "not a RIFF file") {
        t.Fatalf("message lost: %v", err)
    }
}

func TestCommandDetectNonZeroExit(t *testing.T) {
    script := writeScript(t, `echo "model crashed" >&2; exit 3`)
    c := Command{Argv: []string{script}}

    _, err := c.Detect(context.Background(), "/tmp/clip.wav")
    if err == nil {
        t.Fatal("expected error")
    }
    if domain.IsDecodeFailure(err) {
        t.Fatalf("command crash should be an inference failure: %v", err)
    }
    if !strings.Contains(err.Error(), "model crashed") {
        t.Fatalf("stderr lost: %v", err)
    }
}

func TestCommandDetectNoCommand(t *testing.T) {
    c := Command{}
    if _, err := c.Detect(context.Background(), "/tmp/clip.wav"); err == nil {
        t.Fatal("expected error for empty command")
    }
}
