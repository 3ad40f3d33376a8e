package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomreviews_rooms_created_total",
		Help: "Rooms created.",
	})

	RoomsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomreviews_rooms_deleted_total",
		Help: "Rooms deleted by their owner.",
	})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomreviews_reviews_created_total",
		Help: "Reviews created.",
	})

	AuthzDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomreviews_authz_denials_total",
		Help: "Mutations rejected by an authorization guard.",
	}, []string{"guard"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomreviews_uploads_total",
		Help: "File upload attempts by outcome.",
	}, []string{"status"})
)
