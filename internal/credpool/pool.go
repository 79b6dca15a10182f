package credpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"profileimport/internal/db"
	"profileimport/internal/model"
	"profileimport/internal/provider"
)

// ErrExhausted is returned when no eligible credential remains for a
// provider.
var ErrExhausted = errors.New("no eligible credential for provider")

type usageUpdate struct {
	id     uint
	result string
}

// Pool holds the per-provider credential state. Selection and bookkeeping
// happen against the in-memory view under a mutex; counter updates are
// persisted asynchronously through a buffered queue, and the view is
// refreshed from the database periodically.
type Pool struct {
	mutex       sync.Mutex
	creds       map[string][]*model.ApiCredential
	providers   []string
	logger      *slog.Logger
	db          db.Service
	cooldown    time.Duration
	stopChan    chan struct{}
	updateQueue chan usageUpdate
	wg          sync.WaitGroup
	// syncDBUpdates makes bookkeeping writes synchronous. For testing.
	syncDBUpdates bool
	now           func() time.Time
}

// New creates a Pool covering the given providers. Credentials are loaded
// eagerly so a misconfigured database fails startup.
func New(dbService db.Service, providers []string, cooldown time.Duration, logger *slog.Logger) (*Pool, error) {
	p := &Pool{
		creds:       make(map[string][]*model.ApiCredential),
		providers:   providers,
		logger:      logger.With("component", "credpool"),
		db:          dbService,
		cooldown:    cooldown,
		stopChan:    make(chan struct{}),
		updateQueue: make(chan usageUpdate, 100),
		now:         time.Now,
	}

	for _, name := range providers {
		creds, err := dbService.LoadActiveCredentials(name)
		if err != nil {
			return nil, fmt.Errorf("failed to perform initial credential load for %s: %w", name, err)
		}
		if len(creds) == 0 {
			p.logger.Warn("No active credentials found for provider", "provider", name)
		}
		p.creds[name] = toPointers(creds)
	}

	// Periodically refresh the in-memory view from the database
	go p.reloader()

	// Drain bookkeeping updates in the background
	p.wg.Add(1)
	go p.usageUpdater()

	return p, nil
}

func toPointers(creds []model.ApiCredential) []*model.ApiCredential {
	out := make([]*model.ApiCredential, len(creds))
	for i := range creds {
		out[i] = &creds[i]
	}
	return out
}

// Next selects the best eligible credential for a provider: active, under its
// daily limit, and not rate-limited within the cool-down window. Ties break
// by ascending priority, then ascending usage count, then least recently
// used. Credentials whose ids appear in exclude are skipped so one import
// never retries a credential it already tried.
func (p *Pool) Next(providerName string, exclude ...uint) (*model.ApiCredential, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	excluded := make(map[uint]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	now := p.now()
	var eligible []*model.ApiCredential
	for _, c := range p.creds[providerName] {
		if excluded[c.ID] {
			continue
		}
		if !c.Active {
			continue
		}
		if c.DailyLimit > 0 && c.DailyUsage >= c.DailyLimit {
			continue
		}
		if c.LastResult == model.ResultRateLimited && c.LastUsedAt != nil && now.Sub(*c.LastUsedAt) < p.cooldown {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return nil, ErrExhausted
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.UsageCount != b.UsageCount {
			return a.UsageCount < b.UsageCount
		}
		return olderUse(a.LastUsedAt, b.LastUsedAt)
	})
	return eligible[0], nil
}

// olderUse orders never-used credentials before used ones, then by oldest
// last use.
func olderUse(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

// RecordSuccess bumps the credential's counters and marks the attempt as
// successful.
func (p *Pool) RecordSuccess(cred *model.ApiCredential) {
	p.record(cred, model.ResultSuccess)
}

// RecordFailure bumps the credential's counters and records the classified
// failure. A rate-limited result deprioritizes the credential for the
// cool-down window; nothing removes it from the pool permanently.
func (p *Pool) RecordFailure(cred *model.ApiCredential, kind provider.Kind) {
	result := model.ResultError
	if kind == provider.KindRateLimited {
		result = model.ResultRateLimited
	}
	p.record(cred, result)
}

func (p *Pool) record(cred *model.ApiCredential, result string) {
	p.mutex.Lock()
	now := p.now()
	cred.UsageCount++
	cred.DailyUsage++
	cred.LastUsedAt = &now
	cred.LastResult = result
	p.mutex.Unlock()

	if p.syncDBUpdates {
		if err := p.db.RecordCredentialUse(cred.ID, result); err != nil {
			p.logger.Warn("Failed to record credential use in DB", "credential_id", cred.ID, "error", err)
		}
		return
	}

	select {
	case p.updateQueue <- usageUpdate{id: cred.ID, result: result}:
		// Successfully queued
	default:
		p.logger.Error("Failed to queue credential usage update: queue is full", "credential_id", cred.ID)
	}
}

// AvailableCount returns how many credentials are currently eligible for a
// provider. Used by the health endpoint.
func (p *Pool) AvailableCount(providerName string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := p.now()
	count := 0
	for _, c := range p.creds[providerName] {
		if !c.Active {
			continue
		}
		if c.DailyLimit > 0 && c.DailyUsage >= c.DailyLimit {
			continue
		}
		if c.LastResult == model.ResultRateLimited && c.LastUsedAt != nil && now.Sub(*c.LastUsedAt) < p.cooldown {
			continue
		}
		count++
	}
	return count
}

// usageUpdater is a worker that persists bookkeeping updates from the queue.
func (p *Pool) usageUpdater() {
	defer p.wg.Done()
	p.logger.Info("Starting credential usage updater worker.")

	for u := range p.updateQueue {
		if err := p.db.RecordCredentialUse(u.id, u.result); err != nil {
			p.logger.Warn("Failed to record credential use in DB", "credential_id", u.id, "error", err)
		}
	}
	p.logger.Info("Credential usage updater worker stopped.")
}

// reloader periodically refreshes credentials from the database so admin
// changes (new credentials, deactivations) are picked up.
func (p *Pool) reloader() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.reload()
		case <-p.stopChan:
			p.logger.Info("Stopping credential reloader.")
			return
		}
	}
}

func (p *Pool) reload() {
	fresh := make(map[string][]*model.ApiCredential, len(p.providers))
	for _, name := range p.providers {
		creds, err := p.db.LoadActiveCredentials(name)
		if err != nil {
			p.logger.Error("Failed to reload credentials from database", "provider", name, "error", err)
			// Keep using the old set if the reload fails
			return
		}
		fresh[name] = toPointers(creds)
	}

	p.mutex.Lock()
	p.creds = fresh
	p.mutex.Unlock()
	p.logger.Debug("Credential pool refreshed from database")
}

// Close gracefully shuts down the pool's background tasks, draining any
// queued bookkeeping updates first.
func (p *Pool) Close() {
	close(p.stopChan)
	close(p.updateQueue)
	p.wg.Wait()
	p.logger.Info("Credential pool shutdown complete.")
}
