package syncer

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"snapsync/internal/models"
)

// Destination is a calendar whose events the member can be marked attending on.
type Destination interface {
	// ListUpcomingEvents returns the candidate events starting from now.
	ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.EventCandidate, error)
	// MarkAttending marks the member as attending eventID.
	MarkAttending(ctx context.Context, eventID string) error
}

// MatchMode selects how a source window is compared with a destination event.
type MatchMode string

const (
	MatchOverlap MatchMode = "overlap"
	MatchExact   MatchMode = "exact"
)

// ParseMatchMode validates a mode name. An empty name means MatchOverlap.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "", MatchOverlap:
		return MatchOverlap, nil
	case MatchExact:
		return MatchExact, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want %q or %q)", s, MatchOverlap, MatchExact)
	}
}

// Matches reports whether a and b correspond under mode.
func (m MatchMode) Matches(a, b models.TimeRange) bool {
	if m == MatchExact {
		return a.Equal(b)
	}
	return a.Overlaps(b)
}

// WriteError records a failed MarkAttending call.
type WriteError struct {
	EventID string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to mark event %s as attending: %v", e.EventID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Decide computes one decision per candidate. A candidate the member already
// attends is always NoOp, whatever the source windows say, so repeated runs
// never write twice.
func Decide(windows []models.TimeRange, candidates []models.EventCandidate, mode MatchMode) []models.SyncDecision {
	decisions := make([]models.SyncDecision, 0, len(candidates))
	for _, c := range candidates {
		d := models.SyncDecision{EventID: c.ID, Title: c.Title, Action: models.NoOp}
		if !c.Attending && slices.ContainsFunc(windows, func(w models.TimeRange) bool {
			return mode.Matches(w, c.Range)
		}) {
			d.Action = models.MarkAttending
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// Syncer orchestrates one attendance synchronization against a destination.
type Syncer struct {
	logger *slog.Logger
	dest   Destination
	mode   MatchMode
	dryRun bool
}

// NewSyncer creates a new Syncer.
func NewSyncer(logger *slog.Logger, dest Destination, mode MatchMode, dryRun bool) *Syncer {
	return &Syncer{
		logger: logger,
		dest:   dest,
		mode:   mode,
		dryRun: dryRun,
	}
}

// Run matches the source windows against the destination's upcoming events
// and applies the resulting decisions. Only a failure to list the destination
// is returned as an error; write failures are reported per result.
func (s *Syncer) Run(ctx context.Context, windows iter.Seq[models.TimeRange], now time.Time) ([]models.SyncResult, error) {
	s.logger.Info("Starting sync cycle.", "now", now.Format(time.RFC3339), "match", s.mode)

	source := slices.Collect(windows)
	s.logger.Info("Resolved attending windows.", "count", len(source))

	candidates, err := s.dest.ListUpcomingEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination events: %w", err)
	}
	s.logger.Info("Fetched destination events.", "count", len(candidates))

	results := s.Apply(ctx, Decide(source, candidates, s.mode))

	marked, failed := Tally(results)
	s.logger.Info("Sync cycle finished.", "marked", marked, "failed", failed, "unchanged", len(results)-marked-failed)
	return results, nil
}

// Apply issues MarkAttending writes one at a time. A failed write is recorded
// and the remaining decisions are still applied.
func (s *Syncer) Apply(ctx context.Context, decisions []models.SyncDecision) []models.SyncResult {
	results := make([]models.SyncResult, 0, len(decisions))
	for _, d := range decisions {
		res := models.SyncResult{Decision: d}
		if d.Action == models.MarkAttending {
			res.Err = s.markAttending(ctx, d)
		} else {
			s.logger.Debug("No change for event.", "title", d.Title, "id", d.EventID)
		}
		results = append(results, res)
	}
	return results
}

func (s *Syncer) markAttending(ctx context.Context, d models.SyncDecision) error {
	if s.dryRun {
		s.logger.Info("[DRY RUN] Would mark event as attending", "title", d.Title, "id", d.EventID)
		return nil
	}

	if err := s.dest.MarkAttending(ctx, d.EventID); err != nil {
		werr := &WriteError{EventID: d.EventID, Err: err}
		s.logger.Error("Failed to mark event as attending", "title", d.Title, "id", d.EventID, "error", err)
		return werr
	}
	s.logger.Info("Marked event as attending.", "title", d.Title, "id", d.EventID)
	return nil
}

// Tally counts successful and failed MarkAttending results.
func Tally(results []models.SyncResult) (marked, failed int) {
	for _, r := range results {
		if r.Decision.Action != models.MarkAttending {
			continue
		}
		if r.Err != nil {
			failed++
		} else {
			marked++
		}
	}
	return marked, failed
}
