package domain

import (
    "errors"
    "testing"
)

func TestValidTransitions(t *testing.T) {
    allowed := []struct{ from, to JobStatus }{
        {StatusQueued, StatusRunning},
        {StatusRunning, StatusSucceeded},
        {StatusRunning, StatusQueued},
        {StatusRunning, StatusFailed},
    }
    for _, tr := range allowed {
        if !ValidTransition(tr.from, tr.to) {
            t.Errorf("transition %s -> %s should be legal", tr.from, tr.to)
        }
    }
}

func TestInvalidTransitions(t *testing.T) {
    statuses := []JobStatus{StatusQueued, StatusRunning, StatusSucceeded, StatusFailed}
    legal := map[[2]JobStatus]bool{
        {StatusQueued, StatusRunning}:    true,
        {StatusRunning, StatusSucceeded}: true,
        {StatusRunning, StatusQueued}:    true,
        {StatusRunning, StatusFailed}:    true,
    }
    for _, from := range statuses {
        for _, to := range statuses {
            if legal[[2]JobStatus{from, to}] {
                continue
            }
            if ValidTransition(from, to) {
                t.Errorf("transition %s -> %s should be illegal", from, to)
            }
        }
    }
}

func TestTransitionError(t *testing.T) {
    err := TransitionError(StatusSucceeded, StatusRunning)
    if !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("expected ErrInvalidTransition, got %v", err)
    }
}

func TestTerminal(t *testing.T) {
    if StatusQueued.Terminal() || StatusRunning.Terminal() {
        t.Fatal("queued and running are not terminal")
    }
    if !StatusSucceeded.Terminal() || !StatusFailed.Terminal() {
        t.Fatal("succeeded and failed are terminal")
    }
}

func TestIsDecodeFailure(t *testing.T) {
    decode := &DetectError{Kind: DetectDecode, Err: errors.New("bad riff header")}
    infer := &DetectError{Kind: DetectInference, Err: errors.New("model load")}
    if !IsDecodeFailure(decode) {
        t.Fatal("decode error not recognized")
    }
    if IsDecodeFailure(infer) || IsDecodeFailure(errors.New("plain")) {
        t.Fatal("non-decode errors misclassified")
    }
}
