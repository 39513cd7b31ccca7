package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttt_connections_active",
		Help: "Open websocket connections.",
	})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttt_queue_length",
		Help: "Players waiting for an opponent.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttt_sessions_active",
		Help: "Sessions still being played.",
	})

	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ttt_matches_total",
		Help: "Sessions created by matchmaking.",
	})

	MovesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_moves_total",
		Help: "Moves received, by result.",
	}, []string{"result"})

	GamesFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_games_finished_total",
		Help: "Finished sessions, by outcome.",
	}, []string{"outcome"})

	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_persistence_failures_total",
		Help: "Durable writes that failed after retries, by operation.",
	}, []string{"op"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttt_http_requests_total",
		Help: "HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})
)
