// Package metrics defines the Prometheus collectors exposed on /metrics.
// Mirror failures are swallowed by design, so the counters here are the
// required trace that no degradation goes unrecorded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesAppended counts messages durably written to the local store.
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commitboard_messages_appended_total",
		Help: "Number of messages durably written to the local store.",
	})

	// MirrorPublishFailures counts swallowed publish failures per mirror.
	MirrorPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commitboard_mirror_publish_failures_total",
		Help: "Number of mirror publishes that failed and were degraded to commit_hash=null.",
	}, []string{"repository"})

	// MirrorFetchFailures counts swallowed history-read failures per mirror.
	MirrorFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commitboard_mirror_fetch_failures_total",
		Help: "Number of mirror history reads that failed and contributed zero messages.",
	}, []string{"repository"})
)
