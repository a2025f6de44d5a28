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

type Server struct {
	Store           club.ClubStore
	Metrics         metrics.Metrics
	MetricsStore    metrics.MetricsStore
	MetricsHandler  http.Handler
	Cfg             config.Config
	PlaytomicClient playtomic.PlaytomicClient
	Processor       *processor.Processor
	Router          *http.ServeMux
	pubsub          pubsub.PubSubClient
}
