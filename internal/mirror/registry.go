// Package mirror fans message writes and reads out to the configured set of
// remote mirrors. The first configured mirror is the primary: it is the one
// whose commit hash gets attached to the local row. Mirror failures never
// propagate as request failures; they degrade the response and leave a trace
// in the log and the failure counters.
package mirror

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/commitboard/internal/board"
	"github.com/edgard/commitboard/internal/metrics"
)

// Mirror is one remote repository receiving a copy of every message.
type Mirror interface {
	// Repo returns the owner/name identifier of the mirror.
	Repo() string

	// Publish writes the message as a committed file and returns the commit SHA.
	Publish(ctx context.Context, content, correlationID string) (string, error)

	// Recent reconstructs messages from the mirror's commit history.
	Recent(ctx context.Context, since time.Time, limit int) ([]board.Message, error)

	// BranchHead resolves the current head commit of the mirrored branch.
	BranchHead(ctx context.Context) (string, error)
}

// PushStatus reports the outcome of a branch-head probe for one mirror.
type PushStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	SHA     string `json:"sha,omitempty"`
}

// Registry holds the ordered list of configured mirrors. Order defines the
// primary (index 0). No two mirrors may share (owner, name); that is a caller
// error and is not validated here.
type Registry struct {
	mirrors []Mirror
	timeout time.Duration
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. timeout bounds every individual
// mirror call so one hung mirror cannot block the others indefinitely.
func NewRegistry(timeout time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Registry{
		timeout: timeout,
		logger:  logger.With("component", "mirror_registry"),
	}
}

// Add appends a mirror. The first mirror added becomes the primary.
func (r *Registry) Add(m Mirror) {
	r.mirrors = append(r.mirrors, m)
	r.logger.Info("Mirror registered", "repository", m.Repo(), "primary", len(r.mirrors) == 1)
}

// Len returns the number of configured mirrors.
func (r *Registry) Len() int {
	return len(r.mirrors)
}

// PublishPrimary publishes the message to the primary mirror and returns the
// commit SHA, or "" when no mirrors are configured or the publish fails.
// It never returns an error: a failed mirror write leaves the message local-only.
func (r *Registry) PublishPrimary(ctx context.Context, content, correlationID string) string {
	if len(r.mirrors) == 0 {
		r.logger.DebugContext(ctx, "No mirrors configured, skipping publish")
		return ""
	}

	primary := r.mirrors[0]
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sha, err := primary.Publish(cctx, content, correlationID)
	if err != nil {
		metrics.MirrorPublishFailures.WithLabelValues(primary.Repo()).Inc()
		r.logger.WarnContext(ctx, "Mirror publish failed, message stays local-only",
			"repository", primary.Repo(), "correlation_id", correlationID, "error", err)
		return ""
	}

	return sha
}

// RecentAll reconstructs messages from every configured mirror, continuing
// past individual failures. Results are unsorted; ordering is the
// aggregator's job. A failed mirror contributes zero messages and is counted,
// never conflated with a mirror that genuinely has none.
func (r *Registry) RecentAll(ctx context.Context, since time.Time, limit int) []board.Message {
	if len(r.mirrors) == 0 {
		return nil
	}

	results := make([][]board.Message, len(r.mirrors))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range r.mirrors {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			msgs, err := m.Recent(cctx, since, limit)
			if err != nil {
				metrics.MirrorFetchFailures.WithLabelValues(m.Repo()).Inc()
				r.logger.WarnContext(ctx, "Mirror read failed, contributing zero messages",
					"repository", m.Repo(), "error", err)
				return nil
			}
			results[i] = msgs
			return nil
		})
	}
	_ = g.Wait() // goroutines swallow their own errors

	var all []board.Message
	for _, msgs := range results {
		all = append(all, msgs...)
	}

	r.logger.DebugContext(ctx, "Collected mirror messages", "count", len(all), "mirrors", len(r.mirrors))
	return all
}

// PushAll probes every mirror's branch head and returns a per-mirror status
// map keyed by owner/name. Individual failures are reported in the map, not
// raised.
func (r *Registry) PushAll(ctx context.Context) map[string]PushStatus {
	statuses := make(map[string]PushStatus, len(r.mirrors))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range r.mirrors {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			status := PushStatus{Status: "success"}
			sha, err := m.BranchHead(cctx)
			if err != nil {
				status = PushStatus{Status: "error", Message: err.Error()}
			} else {
				status.Message = "branch head resolved"
				status.SHA = sha
			}

			mu.Lock()
			statuses[m.Repo()] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
