package httpadapter

import (
    "encoding/json"
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"

    "langid/internal/domain"
    "langid/internal/ports"
    jobsvc "langid/internal/services/jobs"
)

// Server exposes the submission, query and administrative deletion paths.
// It is a thin boundary over the jobs service; no scheduling or consistency
// logic lives here.
type Server struct {
    jobs           *jobsvc.Service
    promHandler    http.Handler
    workers        int
    modelName      string
    maxUploadBytes int64
    log            *slog.Logger
}

func New(jobs *jobsvc.Service, promHandler http.Handler, workers int, modelName string, maxUploadBytes int64, log *slog.Logger) *Server {
    return &Server{
        jobs:           jobs,
        promHandler:    promHandler,
        workers:        workers,
        modelName:      modelName,
        maxUploadBytes: maxUploadBytes,
        log:            log,
    }
}

func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Get("/healthz", s.getHealthz)
    r.Post("/jobs", s.postJob)
    r.Get("/jobs", s.listJobs)
    r.Delete("/jobs", s.deleteJobs)
    r.Get("/jobs/{id}", s.getJob)
    r.Get("/jobs/{id}/result", s.getJobResult)
    r.Get("/metrics", s.getMetricsJSON)
    if s.promHandler != nil {
        r.Handle("/metrics/prometheus", s.promHandler)
    }
    return r
}

type jobStatusResponse struct {
    JobID     string    `json:"job_id"`
    Status    string    `json:"status"`
    Progress  int       `json:"progress"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
    Attempts  int       `json:"attempts"`
    Error     string    `json:"error,omitempty"`
}

func toStatusResponse(j *domain.Job) jobStatusResponse {
    return jobStatusResponse{
        JobID:     j.ID,
        Status:    string(j.Status),
        Progress:  j.Progress,
        CreatedAt: j.CreatedAt,
        UpdatedAt: j.UpdatedAt,
        Attempts:  j.Attempts,
        Error:     j.Error,
    }
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) postJob(w http.ResponseWriter, r *http.Request) {
    r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1024*1024)
    file, header, err := r.FormFile("file")
    if err != nil {
        s.writeError(w, http.StatusBadRequest, "missing file field")
        return
    }
    defer file.Close()

    job, err := s.jobs.Submit(r.Context(), header.Filename, file)
    if err != nil {
        switch {
        case errors.Is(err, jobsvc.ErrUnsupportedFormat):
            s.writeError(w, http.StatusBadRequest, err.Error())
        case errors.Is(err, jobsvc.ErrTooLarge):
            s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
        default:
            s.internalError(w, r, err)
        }
        return
    }
    writeJSON(w, http.StatusOK, map[string]string{"job_id": job.ID, "status": string(job.Status)})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
    job, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
    if err != nil {
        s.notFoundOr500(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, toStatusResponse(job))
}

func (s *Server) getJobResult(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    res, _, err := s.jobs.Result(r.Context(), id)
    if err != nil {
        if errors.Is(err, jobsvc.ErrNotReady) {
            s.writeError(w, http.StatusConflict, "job has not succeeded")
            return
        }
        s.notFoundOr500(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "job_id":             id,
        "language":           res.LanguageMapped,
        "probability":        res.Probability,
        "transcript_snippet": res.TranscriptSnippet,
        "processing_ms":      res.ProcessingMS,
        "raw":                res,
    })
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
    opts := ports.ListOpts{
        Status:      domain.JobStatus(r.URL.Query().Get("status")),
        OldestFirst: r.URL.Query().Get("order") == "asc",
    }
    jobs, err := s.jobs.List(r.Context(), opts)
    if err != nil {
        s.internalError(w, r, err)
        return
    }
    out := make([]jobStatusResponse, 0, len(jobs))
    for _, j := range jobs {
        out = append(out, toStatusResponse(j))
    }
    writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func (s *Server) deleteJobs(w http.ResponseWriter, r *http.Request) {
    var req struct {
        JobIDs []string `json:"job_ids"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        s.writeError(w, http.StatusBadRequest, "invalid request body")
        return
    }
    n, err := s.jobs.Delete(r.Context(), req.JobIDs)
    if err != nil {
        s.internalError(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "deleted_count": n})
}

func (s *Server) getMetricsJSON(w http.ResponseWriter, r *http.Request) {
    stats, err := s.jobs.Stats(r.Context())
    if err != nil {
        s.internalError(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "time_utc":           time.Now().UTC(),
        "workers_configured": s.workers,
        "model":              map[string]string{"size": s.modelName},
        "queue": map[string]int{
            "queued":    stats[domain.StatusQueued],
            "running":   stats[domain.StatusRunning],
            "succeeded": stats[domain.StatusSucceeded],
            "failed":    stats[domain.StatusFailed],
        },
    })
}

func (s *Server) notFoundOr500(w http.ResponseWriter, r *http.Request, err error) {
    if errors.Is(err, domain.ErrNotFound) {
        s.writeError(w, http.StatusNotFound, "job not found")
        return
    }
    s.internalError(w, r, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
    s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
    s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
    writeJSON(w, code, map[string]string{"detail": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(v)
}
