package config

import (
    "fmt"
    "os"
    "time"
)

type Config struct {
    Env             string
    ListenAddr      string
    DatabaseURL     string // postgres URL, or a sqlite file path (empty = DataDir/langid.sqlite)
    DataDir         string
    Workers         int
    MaxRetries      int
    PollInterval    time.Duration
    MaxUploadBytes  int64
    ModelName       string
    DetectorCmd     string
    UseMockDetector bool
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func Load() Config {
    return Config{
        Env:             getenv("APP_ENV", "development"),
        ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
        DatabaseURL:     os.Getenv("DATABASE_URL"),
        DataDir:         getenv("DATA_DIR", "./data"),
        Workers:         getenvInt("WORKERS", 2),
        MaxRetries:      getenvInt("MAX_RETRIES", 2),
        PollInterval:    time.Duration(getenvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
        MaxUploadBytes:  int64(getenvInt("MAX_UPLOAD_MB", 100)) * 1024 * 1024,
        ModelName:       getenv("MODEL_NAME", "small"),
        DetectorCmd:     os.Getenv("DETECTOR_CMD"),
        UseMockDetector: os.Getenv("USE_MOCK_DETECTOR") == "1",
    }
}

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var out int
        _, err := fmt.Sscanf(v, "%d", &out)
        if err == nil { return out }
    }
    return def
}
