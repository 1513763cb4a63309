package jobs

import (
    "bytes"
    "context"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "langid/internal/adapters/sqlite"
    "langid/internal/domain"
    "langid/internal/ports"
)

func newTestService(t *testing.T, maxUpload int64) (*Service, *sqlite.Store, string) {
    t.Helper()
    dir := t.TempDir()
    store, err := sqlite.Open(filepath.Join(dir, "jobs.sqlite"))
    if err != nil {
        t.Fatalf("open store: %v", err)
    }
    t.Cleanup(func() { _ = store.Close() })
    dataDir := filepath.Join(dir, "storage")
    return New(store, dataDir, maxUpload), store, dataDir
}

func TestSubmitCreatesQueuedJob(t *testing.T) {
    svc, store, dataDir := newTestService(t, 1<<20)
    ctx := context.Background()

    job, err := svc.Submit(ctx, "clip_en.wav", bytes.NewReader(bytes.Repeat([]byte{1}, 128)))
    if err != nil {
        t.Fatalf("submit: %v", err)
    }
    if job.Status != domain.StatusQueued || job.ID == "" {
        t.Fatalf("unexpected job: %+v", job)
    }
    if !strings.HasPrefix(job.InputPath, dataDir) {
        t.Fatalf("clip stored outside data dir: %s", job.InputPath)
    }
    if !strings.Contains(filepath.Base(job.InputPath), "clip_en.wav") {
        t.Fatalf("original name lost: %s", job.InputPath)
    }
    if _, err := os.Stat(job.InputPath); err != nil {
        t.Fatalf("stored clip missing: %v", err)
    }

    got, err := store.Get(ctx, job.ID)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.Attempts != 0 || got.Status != domain.StatusQueued {
        t.Fatalf("row: %+v", got)
    }
}

func TestSubmitRejectsUnsupportedFormat(t *testing.T) {
    svc, _, _ := newTestService(t, 1<<20)
    _, err := svc.Submit(context.Background(), "clip.mp3", bytes.NewReader([]byte{1}))
    if !errors.Is(err, ErrUnsupportedFormat) {
        t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
    }
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
    svc, _, dataDir := newTestService(t, 16)
    _, err := svc.Submit(context.Background(), "big.wav", bytes.NewReader(bytes.Repeat([]byte{1}, 64)))
    if !errors.Is(err, ErrTooLarge) {
        t.Fatalf("expected ErrTooLarge, got %v", err)
    }

    entries, _ := os.ReadDir(dataDir)
    if len(entries) != 0 {
        t.Fatalf("rejected upload left %d files behind", len(entries))
    }
}

func TestResultNotReady(t *testing.T) {
    svc, _, _ := newTestService(t, 1<<20)
    ctx := context.Background()

    job, err := svc.Submit(ctx, "clip_en.wav", bytes.NewReader([]byte{1}))
    if err != nil {
        t.Fatalf("submit: %v", err)
    }
    if _, _, err := svc.Result(ctx, job.ID); !errors.Is(err, ErrNotReady) {
        t.Fatalf("expected ErrNotReady, got %v", err)
    }
    if _, _, err := svc.Result(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestResultAfterSuccess(t *testing.T) {
    svc, store, _ := newTestService(t, 1<<20)
    ctx := context.Background()

    job, err := svc.Submit(ctx, "clip_en.wav", bytes.NewReader([]byte{1}))
    if err != nil {
        t.Fatalf("submit: %v", err)
    }
    if _, _, err := store.ClaimNext(ctx); err != nil {
        t.Fatalf("claim: %v", err)
    }
    payload := []byte(`{"language_raw":"en","language_mapped":"en","probability":0.95,"processing_ms":3,"model":"mock"}`)
    if err := store.Complete(ctx, job.ID, payload); err != nil {
        t.Fatalf("complete: %v", err)
    }

    res, row, err := svc.Result(ctx, job.ID)
    if err != nil {
        t.Fatalf("result: %v", err)
    }
    if res.LanguageMapped != "en" || res.Probability != 0.95 {
        t.Fatalf("result: %+v", res)
    }
    if row.Status != domain.StatusSucceeded {
        t.Fatalf("row: %+v", row)
    }
}

func TestDeleteRemovesRowAndClip(t *testing.T) {
    svc, store, _ := newTestService(t, 1<<20)
    ctx := context.Background()

    job, err := svc.Submit(ctx, "clip_en.wav", bytes.NewReader([]byte{1}))
    if err != nil {
        t.Fatalf("submit: %v", err)
    }

    n, err := svc.Delete(ctx, []string{job.ID})
    if err != nil {
        t.Fatalf("delete: %v", err)
    }
    if n != 1 {
        t.Fatalf("deleted %d, want 1", n)
    }
    if _, err := store.Get(ctx, job.ID); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("row still present: %v", err)
    }
    if _, err := os.Stat(job.InputPath); !os.IsNotExist(err) {
        t.Fatalf("clip still present: %v", err)
    }
}

func TestListPassesThrough(t *testing.T) {
    svc, _, _ := newTestService(t, 1<<20)
    ctx := context.Background()

    for _, name := range []string{"a_en.wav", "b_fr.wav"} {
        if _, err := svc.Submit(ctx, name, bytes.NewReader([]byte{1})); err != nil {
            t.Fatalf("submit %s: %v", name, err)
        }
    }
    jobs, err := svc.List(ctx, ports.ListOpts{Status: domain.StatusQueued})
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(jobs) != 2 {
        t.Fatalf("listed %d jobs, want 2", len(jobs))
    }
}
