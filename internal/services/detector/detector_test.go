package detector

import (
    "bytes"
    "context"
    "os"
    "path/filepath"
    "testing"

    "langid/internal/domain"
)

func TestMapLanguage(t *testing.T) {
    if MapLanguage("fr") != "fr" {
        t.Fatal("known code should map to itself")
    }
    if MapLanguage("xx") != "und" {
        t.Fatal("unknown code should map to und")
    }
}

func writeClip(t *testing.T, name string, payloadBytes int) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), name)
    buf := bytes.Repeat([]byte{0}, 44+payloadBytes)
    if err := os.WriteFile(path, buf, 0o644); err != nil {
        t.Fatalf("write clip: %v", err)
    }
    return path
}

func TestMockDetectByFilename(t *testing.T) {
    ctx := context.Background()
    m := Mock{ModelName: "small"}

    cases := []struct {
        name     string
        wantLang string
        wantProb float64
    }{
        {"clip_fr.wav", "fr", 0.95},
        {"clip_en.wav", "en", 0.95},
        {"tone.wav", "en", 0.6},
    }
    for _, tc := range cases {
        // 0.3s of 16kHz mono s16le
        path := writeClip(t, tc.name, 9600)
        res, err := m.Detect(ctx, path)
        if err != nil {
            t.Fatalf("%s: %v", tc.name, err)
        }
        if res.LanguageRaw != tc.wantLang || res.Probability != tc.wantProb {
            t.Fatalf("%s: got %s/%.2f, want %s/%.2f", tc.name, res.LanguageRaw, res.Probability, tc.wantLang, tc.wantProb)
        }
        if res.LanguageMapped != tc.wantLang {
            t.Fatalf("%s: mapped %s", tc.name, res.LanguageMapped)
        }
        if res.AudioDurationS != 0.3 {
            t.Fatalf("%s: duration %.3f, want 0.3", tc.name, res.AudioDurationS)
        }
        if res.ModelName != "small" {
            t.Fatalf("%s: model %s", tc.name, res.ModelName)
        }
    }
}

func TestMockDetectMissingFile(t *testing.T) {
    m := Mock{}
    _, err := m.Detect(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
    if err == nil {
        t.Fatal("expected error for missing file")
    }
    if !domain.IsDecodeFailure(err) {
        t.Fatalf("missing file should be a decode failure, got %v", err)
    }
}
