package http

import (
	"net/http"

	"github.com/sebbultel59/padel-sync-engine/internal/club"
	"github.com/sebbultel59/padel-sync-engine/internal/config"
	"github.com/sebbultel59/padel-sync-engine/internal/metrics"
	"github.com/sebbultel59/padel-sync-engine/internal/playtomic"
	"github.com/sebbultel59/padel-sync-engine/internal/processor"
	"github.com/sebbultel59/padel-sync-engine/internal/pubsub"
)

func NewServer(store club.ClubStore, metricsSvc metrics.Metrics, metricsStore metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, playtomicClient playtomic.PlaytomicClient, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:           store,
		Metrics:         metricsSvc,
		MetricsStore:    metricsStore,
		MetricsHandler:  metricsHandler,
		Cfg:             cfg,
		PlaytomicClient: playtomicClient,
		Processor:       processor,
		Router:          http.NewServeMux(),
		pubsub:          pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/badges", Chain(s.BadgeRaritiesHandler(), paramsMiddleware))
	s.Router.Handle("/player-progress", Chain(s.PlayerProgressHandler(), paramsMiddleware))
	s.Router.Handle("/declare-level", Chain(s.DeclareLevelHandler(), paramsMiddleware))
	s.Router.Handle("/record-result", Chain(s.RecordResultHandler(), paramsMiddleware))
	s.Router.Handle("/result-event", Chain(s.ResultEventHandler(), paramsMiddleware))
	s.Router.Handle("/import-playtomic", Chain(s.ImportPlaytomicHandler(), paramsMiddleware))
	s.Router.Handle("/engine-stats", Chain(s.EngineStatsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
