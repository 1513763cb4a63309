package metrics

import (
    "net/http"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "langid/internal/domain"
)

// Prom is the prometheus-backed metrics sink. Collectors register against a
// dedicated registry rather than the global default so tests and embedding
// stay isolated.
type Prom struct {
    registry *prometheus.Registry

    jobsTotal         *prometheus.CounterVec
    jobsRunning       prometheus.Gauge
    processingSeconds prometheus.Histogram
    audioSeconds      prometheus.Histogram
    inferMillis       prometheus.Histogram
    activeWorkers     prometheus.Gauge
    decodeFailTotal   prometheus.Counter
    langProbability   *prometheus.GaugeVec
}

func New() *Prom {
    reg := prometheus.NewRegistry()
    factory := promauto.With(reg)
    return &Prom{
        registry: reg,
        jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
            Name: "langid_jobs_total",
            Help: "Jobs processed by status",
        }, []string{"status"}),
        jobsRunning: factory.NewGauge(prometheus.GaugeOpts{
            Name: "langid_jobs_running",
            Help: "Number of jobs currently running",
        }),
        processingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
            Name:    "langid_processing_seconds",
            Help:    "End-to-end processing latency per job",
            Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
        }),
        audioSeconds: factory.NewHistogram(prometheus.HistogramOpts{
            Name:    "langid_audio_seconds",
            Help:    "Input audio duration per job (seconds)",
            Buckets: []float64{1, 3, 10, 30, 60, 120, 300, 900, 1800},
        }),
        inferMillis: factory.NewHistogram(prometheus.HistogramOpts{
            Name:    "langid_infer_duration_ms",
            Help:    "Language inference duration (milliseconds)",
            Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
        }),
        activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
            Name: "langid_active_workers",
            Help: "Number of active worker goroutines",
        }),
        decodeFailTotal: factory.NewCounter(prometheus.CounterOpts{
            Name: "langid_decode_fail_total",
            Help: "Audio decoding failures",
        }),
        langProbability: factory.NewGaugeVec(prometheus.GaugeOpts{
            Name: "langid_lang_probability",
            Help: "Last observed detection probability per language",
        }, []string{"lang"}),
    }
}

// Handler exposes the registry in the prometheus text format.
func (p *Prom) Handler() http.Handler {
    return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prom) JobProcessed(status domain.JobStatus) {
    p.jobsTotal.WithLabelValues(string(status)).Inc()
}

func (p *Prom) ObserveProcessingSeconds(seconds float64) { p.processingSeconds.Observe(seconds) }
func (p *Prom) ObserveAudioSeconds(seconds float64)      { p.audioSeconds.Observe(seconds) }
func (p *Prom) ObserveInferenceMillis(ms float64)        { p.inferMillis.Observe(ms) }
func (p *Prom) SetActiveWorkers(n int)                   { p.activeWorkers.Set(float64(n)) }
func (p *Prom) AddRunningJobs(delta int)                 { p.jobsRunning.Add(float64(delta)) }
func (p *Prom) DecodeFailure()                           { p.decodeFailTotal.Inc() }

func (p *Prom) SetLanguageProbability(lang string, prob float64) {
    p.langProbability.WithLabelValues(lang).Set(prob)
}

// Noop discards every observation. Used by tests and by callers that do not
// expose metrics.
type Noop struct{}

func (Noop) JobProcessed(domain.JobStatus)         {}
func (Noop) ObserveProcessingSeconds(float64)      {}
func (Noop) ObserveAudioSeconds(float64)           {}
func (Noop) ObserveInferenceMillis(float64)        {}
func (Noop) SetActiveWorkers(int)                  {}
func (Noop) AddRunningJobs(int)                    {}
func (Noop) DecodeFailure()                        {}
func (Noop) SetLanguageProbability(string, float64) {}
