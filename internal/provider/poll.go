package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrPollTimeout is returned when the poll budget is exhausted before the job
// produced a result. The orchestrator treats it as a transient failure of one
// provider attempt, not as fatal.
var ErrPollTimeout = errors.New("poll budget exhausted before job completed")

// JobState tags the outcome of a single status query.
type JobState int

const (
	JobPending JobState = iota
	JobReady
	JobFailed
)

// StatusResult is the decoded outcome of one status query.
type StatusResult struct {
	State   JobState
	Payload RawProfile
	Reason  string
}

// StatusFunc performs a single job status query.
type StatusFunc func(ctx context.Context) (StatusResult, error)

// Budget bounds a poll loop. Either bound alone is sufficient to terminate
// the loop.
type Budget struct {
	MaxAttempts int
	MaxDuration time.Duration
	Interval    time.Duration
}

// Poller drives async scrape jobs with bounded status checks. The clock and
// sleep functions are injectable so tests can run without wall-clock delays.
type Poller struct {
	budget Budget
	logger *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPoller(budget Budget, logger *slog.Logger) *Poller {
	if budget.MaxAttempts <= 0 {
		budget.MaxAttempts = 40
	}
	if budget.MaxDuration <= 0 {
		budget.MaxDuration = 120 * time.Second
	}
	if budget.Interval <= 0 {
		budget.Interval = 15 * time.Second
	}
	return &Poller{
		budget: budget,
		logger: logger.With("component", "poller"),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Poll queries the job status until it is ready, fails, or the budget runs
// out. A pending status sleeps one interval, but only while the remaining
// time budget covers it. Transport hiccups count as pending; an auth failure
// aborts immediately since retrying with a dead credential cannot succeed.
func (p *Poller) Poll(ctx context.Context, providerName string, status StatusFunc) (RawProfile, error) {
	start := p.now()
	for attempt := 1; attempt <= p.budget.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.now().Sub(start) >= p.budget.MaxDuration {
			break
		}

		res, err := status(ctx)
		if err != nil {
			if KindOf(err) == KindAuthError {
				return nil, err
			}
			p.logger.Debug("Status query failed, treating as pending", "provider", providerName, "attempt", attempt, "error", err)
		} else {
			switch res.State {
			case JobReady:
				return res.Payload, nil
			case JobFailed:
				return nil, &Error{Kind: KindTransient, Provider: providerName, Message: "job failed: " + res.Reason}
			}
		}

		if p.now().Sub(start)+p.budget.Interval > p.budget.MaxDuration {
			break
		}
		if err := p.sleep(ctx, p.budget.Interval); err != nil {
			return nil, err
		}
	}
	return nil, ErrPollTimeout
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
