// Package metrics exposes Prometheus counters for the scanner.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/holoscan/internal/scan"
)

// Metrics holds the scanner's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesTotal       prometheus.Counter
	handFramesTotal   prometheus.Counter
	framesDropped     prometheus.Counter
	detectErrors      prometheus.Counter
	scansCompleted    prometheus.Counter
	sessionsStarted   prometheus.Counter
	revealsPlayed     prometheus.Counter
	primeFailures     prometheus.Counter
	phaseTransitions  *prometheus.CounterVec
	currentPhase      prometheus.Gauge
	stableSeconds     prometheus.Gauge
	wsClients         prometheus.Gauge
	requestsTotal     prometheus.Counter
	requestErrorTotal prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_frames_total",
			Help: "Frames posted to the scan session",
		}),
		handFramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_hand_frames_total",
			Help: "Frames in which a hand was detected",
		}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_frames_dropped_total",
			Help: "Frames dropped because the session loop was busy",
		}),
		detectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_detect_errors_total",
			Help: "Hand detection failures",
		}),
		scansCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_scans_completed_total",
			Help: "Scans that reached the hold duration",
		}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_sessions_started_total",
			Help: "Scan sessions started, including resets",
		}),
		revealsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_reveals_played_total",
			Help: "Reveal videos started by the user",
		}),
		primeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_reveal_prime_failures_total",
			Help: "Reveal priming attempts that failed",
		}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holoscan_phase_transitions_total",
			Help: "Phase transitions by destination phase",
		}, []string{"phase"}),
		currentPhase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holoscan_phase",
			Help: "Current phase of the active session (0 scanning .. 4 reveal_playing)",
		}),
		stableSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holoscan_stable_seconds",
			Help: "Continuous stability measured on the last frame",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holoscan_ws_clients",
			Help: "Connected event stream clients",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_http_requests_total",
			Help: "HTTP requests received",
		}),
		requestErrorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holoscan_http_errors_total",
			Help: "HTTP responses with status 400 or above",
		}),
	}

	m.registry.MustRegister(
		m.framesTotal,
		m.handFramesTotal,
		m.framesDropped,
		m.detectErrors,
		m.scansCompleted,
		m.sessionsStarted,
		m.revealsPlayed,
		m.primeFailures,
		m.phaseTransitions,
		m.currentPhase,
		m.stableSeconds,
		m.wsClients,
		m.requestsTotal,
		m.requestErrorTotal,
	)
	return m
}

// Registry returns the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFrame counts one posted frame.
func (m *Metrics) ObserveFrame(hand, accepted bool) {
	if !accepted {
		m.framesDropped.Inc()
		return
	}
	m.framesTotal.Inc()
	if hand {
		m.handFramesTotal.Inc()
	}
}

// IncDetectErrors counts a failed detection.
func (m *Metrics) IncDetectErrors() { m.detectErrors.Inc() }

// IncScansCompleted counts a completed scan.
func (m *Metrics) IncScansCompleted() { m.scansCompleted.Inc() }

// IncSessions counts a started session.
func (m *Metrics) IncSessions() { m.sessionsStarted.Inc() }

// IncRevealsPlayed counts a reveal request.
func (m *Metrics) IncRevealsPlayed() { m.revealsPlayed.Inc() }

// ObservePrime counts priming failures.
func (m *Metrics) ObservePrime(success bool) {
	if !success {
		m.primeFailures.Inc()
	}
}

// ObservePhase records a transition into p.
func (m *Metrics) ObservePhase(p scan.Phase) {
	m.phaseTransitions.WithLabelValues(p.String()).Inc()
	m.currentPhase.Set(float64(p))
}

// Hooks returns session hooks that keep the counters current.
func (m *Metrics) Hooks() scan.Hooks {
	return scan.Hooks{
		OnPhase:             func(_, to scan.Phase) { m.ObservePhase(to) },
		OnScanComplete:      m.IncScansCompleted,
		OnRevealPrimed:      m.ObservePrime,
		OnUserRevealRequest: m.IncRevealsPlayed,
		OnSessionStart: func(string, time.Time) {
			m.IncSessions()
			m.currentPhase.Set(float64(scan.Scanning))
		},
	}
}

// SetSnapshot refreshes the gauges from a session snapshot.
func (m *Metrics) SetSnapshot(s scan.Snapshot) {
	m.currentPhase.Set(float64(s.Phase))
	m.stableSeconds.Set(s.Elapsed.Seconds())
}

// SetClients sets the websocket client gauge.
func (m *Metrics) SetClients(n int) { m.wsClients.Set(float64(n)) }

// IncRequests counts an HTTP request.
func (m *Metrics) IncRequests() { m.requestsTotal.Inc() }

// IncErrors counts an HTTP error response.
func (m *Metrics) IncErrors() { m.requestErrorTotal.Inc() }

// Handler serves the registry. updateGauges runs before each scrape.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
