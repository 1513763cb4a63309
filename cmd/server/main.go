package main

import (
    "context"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "path/filepath"
    "strings"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/joho/godotenv"

    httpadapter "langid/internal/adapters/http"
    pg "langid/internal/adapters/postgres"
    "langid/internal/adapters/sqlite"
    "langid/internal/config"
    "langid/internal/metrics"
    "langid/internal/ports"
    "langid/internal/services/detector"
    jobsvc "langid/internal/services/jobs"
    "langid/internal/workers/jobrunner"
)

func main() {
    _ = godotenv.Load()

    logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
    slog.SetDefault(logger)

    cfg := config.Load()

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    var repo ports.JobRepository
    var closeStore func()
    if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
        db, err := pg.Connect(ctx, cfg.DatabaseURL)
        if err != nil {
            logger.Error("db connect failed", "err", err)
            os.Exit(1)
        }
        repo, closeStore = db, db.Close
        logger.Info("using postgres store")
    } else {
        path := cfg.DatabaseURL
        if path == "" {
            path = filepath.Join(cfg.DataDir, "langid.sqlite")
        }
        st, err := sqlite.Open(path)
        if err != nil {
            logger.Error("sqlite open failed", "path", path, "err", err)
            os.Exit(1)
        }
        repo, closeStore = st, func() { _ = st.Close() }
        logger.Info("using sqlite store", "path", path)
    }
    defer closeStore()

    sink := metrics.New()

    var det ports.Detector
    switch {
    case cfg.UseMockDetector:
        det = detector.Mock{ModelName: cfg.ModelName}
        logger.Info("using mock detector")
    case cfg.DetectorCmd != "":
        det = detector.Command{Argv: strings.Fields(cfg.DetectorCmd)}
        logger.Info("using detector command", "cmd", cfg.DetectorCmd)
    default:
        logger.Warn("DETECTOR_CMD not set, falling back to mock detector")
        det = detector.Mock{ModelName: cfg.ModelName}
    }

    jobs := jobsvc.New(repo, cfg.DataDir, cfg.MaxUploadBytes)
    srv := httpadapter.New(jobs, sink.Handler(), cfg.Workers, cfg.ModelName, cfg.MaxUploadBytes, logger)
    r := chi.NewRouter()
    r.Mount("/", srv.Routes())

    if cfg.Workers > 0 {
        pipe := &jobrunner.Pipeline{
            Repo:       repo,
            Detector:   det,
            Metrics:    sink,
            MaxRetries: cfg.MaxRetries,
            Log:        logger,
        }
        go jobrunner.Run(ctx, repo, pipe, cfg.Workers, cfg.PollInterval, sink, logger)
        logger.Info("workers started", "count", cfg.Workers, "max_retries", cfg.MaxRetries)
    }

    errCh := make(chan error, 1)
    go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
    logger.Info("listening", "addr", cfg.ListenAddr)

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        logger.Info("shutting down", "signal", sig.String())
        cancel()
        time.Sleep(300 * time.Millisecond)
    case err := <-errCh:
        logger.Error("server error", "err", err)
        os.Exit(1)
    }
}
