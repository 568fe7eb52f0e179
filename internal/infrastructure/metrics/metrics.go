package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"scrimbot/internal/ports/output"
)

var _ output.Metrics = (*Store)(nil)

// Store exposes coordinator activity as Prometheus counters.
type Store struct {
	challengesSubmitted prometheus.Counter
	challengesAccepted  prometheus.Counter
	challengesRejected  prometheus.Counter
	matchesAbandoned    prometheus.Counter
	panelsCreated       *prometheus.CounterVec
	sweepsRun           prometheus.Counter
	sweptPanels         prometheus.Counter
}

func New() *Store {
	return &Store{
		challengesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_challenges_submitted_total",
			Help: "Challenges submitted against a slot.",
		}),
		challengesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_challenges_accepted_total",
			Help: "Challenges promoted into a confirmed match.",
		}),
		challengesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_challenges_rejected_total",
			Help: "Challenges rejected by the host manager.",
		}),
		matchesAbandoned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_matches_abandoned_total",
			Help: "Confirmed matches reverted to available.",
		}),
		panelsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrimbot_panels_created_total",
			Help: "Availability panels created, by panel type.",
		}, []string{"type"}),
		sweepsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_sweeps_total",
			Help: "Daily sweep runs.",
		}),
		sweptPanels: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrimbot_swept_panels_total",
			Help: "Panels deleted by the daily sweep.",
		}),
	}
}

func (s *Store) ChallengeSubmitted() { s.challengesSubmitted.Inc() }
func (s *Store) ChallengeAccepted()  { s.challengesAccepted.Inc() }
func (s *Store) ChallengeRejected()  { s.challengesRejected.Inc() }
func (s *Store) MatchAbandoned()     { s.matchesAbandoned.Inc() }

func (s *Store) PanelCreated(panelType string) {
	s.panelsCreated.WithLabelValues(panelType).Inc()
}

func (s *Store) SweepRun(panelsDeleted int64) {
	s.sweepsRun.Inc()
	s.sweptPanels.Add(float64(panelsDeleted))
}

// Serve exposes /metrics and /healthz on addr. It blocks, so run it in its
// own goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("addr", addr).Msg("serveur de métriques arrêté")
	}
}

// Noop is a Metrics implementation that records nothing; used in tests.
type Noop struct{}

var _ output.Metrics = Noop{}

func (Noop) ChallengeSubmitted()   {}
func (Noop) ChallengeAccepted()    {}
func (Noop) ChallengeRejected()    {}
func (Noop) MatchAbandoned()       {}
func (Noop) PanelCreated(string)   {}
func (Noop) SweepRun(int64)        {}
