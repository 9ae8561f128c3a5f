package worksheets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worksheets_uploads_total",
			Help: "Worksheet uploads by outcome.",
		},
		[]string{"result"},
	)

	orphanedBlobsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worksheets_orphaned_blobs_total",
			Help: "Blobs left in storage after a failed upload could not be cleaned up.",
		},
	)
)

// Upload outcomes.
const (
	resultSuccess   = "success"
	resultInvalid   = "invalid"
	resultStorage   = "storage_error"
	resultThumbnail = "thumbnail_error"
	resultDatabase  = "database_error"
)
