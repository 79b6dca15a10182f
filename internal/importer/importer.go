package importer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"profileimport/internal/credpool"
	"profileimport/internal/db"
	"profileimport/internal/model"
	"profileimport/internal/provider"

	"github.com/google/uuid"
)

// ErrorKind classifies a failed import for the caller.
type ErrorKind string

const (
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindInvalidInput  ErrorKind = "invalid_input"
	KindExhausted     ErrorKind = "exhausted"
)

// Error is the classified outcome of a failed import. The message is safe to
// show to callers; provider-internal detail stays in the logs and the audit
// record.
type Error struct {
	Kind      ErrorKind
	Message   string
	Remaining int
}

func (e *Error) Error() string { return e.Message }

// Pool is the credential pool surface the importer needs.
type Pool interface {
	Next(providerName string, exclude ...uint) (*model.ApiCredential, error)
	RecordSuccess(cred *model.ApiCredential)
	RecordFailure(cred *model.ApiCredential, kind provider.Kind)
}

// Normalizer maps a raw payload into the canonical profile.
type Normalizer interface {
	Normalize(raw provider.RawProfile) (*model.CanonicalProfile, []string, error)
}

// Importer is the top-level entry point of the acquisition pipeline. It
// enforces quotas, walks the credential pool across providers until success
// or exhaustion, writes the audit record and returns the normalized profile.
type Importer struct {
	pool       Pool
	adapters   []provider.Adapter
	normalizer Normalizer
	db         db.Service
	quotas     map[string]int
	deadline   time.Duration
	retention  time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func New(pool Pool, adapters []provider.Adapter, normalizer Normalizer, dbService db.Service, quotas map[string]int, deadline, retention time.Duration, logger *slog.Logger) *Importer {
	return &Importer{
		pool:       pool,
		adapters:   adapters,
		normalizer: normalizer,
		db:         dbService,
		quotas:     quotas,
		deadline:   deadline,
		retention:  retention,
		logger:     logger.With("component", "importer"),
		now:        time.Now,
	}
}

// attemptRecord captures one failed provider attempt for the audit payload.
type attemptRecord struct {
	Provider     string `json:"provider"`
	CredentialID uint   `json:"credential_id"`
	Kind         string `json:"kind"`
	Error        string `json:"error"`
}

type successPayload struct {
	Provider     string   `json:"provider"`
	CredentialID uint     `json:"credential_id"`
	Subject      string   `json:"subject"`
	Warnings     []string `json:"warnings,omitempty"`
}

type failurePayload struct {
	Subject  string          `json:"subject"`
	Attempts []attemptRecord `json:"attempts"`
}

// RemainingQuota computes how many imports the user has left today. Returns
// -1 for unlimited tiers. Unknown tiers fall back to the free tier limit.
func (im *Importer) RemainingQuota(userID, tier string) (int, error) {
	limit, ok := im.quotas[tier]
	if !ok {
		limit = im.quotas[model.TierFree]
	}
	if limit < 0 {
		return model.QuotaUnlimited, nil
	}

	since := startOfDay(im.now())
	count, err := im.db.CountSuccessfulSessionsSince(userID, since)
	if err != nil {
		return 0, err
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Import runs the full pipeline for one user. Attempts are sequential so
// that failure classification can short-circuit correctly; the walk stops at
// the first validated profile or when every provider/credential combination
// is spent.
func (im *Importer) Import(ctx context.Context, userID, tier, rawInput string) (*model.CanonicalProfile, error) {
	remaining, err := im.RemainingQuota(userID, tier)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return nil, &Error{Kind: KindQuotaExceeded, Message: "daily import limit reached", Remaining: 0}
	}

	subject, err := provider.ExtractSubject(rawInput)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "profile URL or handle not recognized"}
	}

	ctx, cancel := context.WithTimeout(ctx, im.deadline)
	defer cancel()

	var attempts []attemptRecord
walk:
	for _, adapter := range im.adapters {
		var tried []uint
		for {
			if ctx.Err() != nil {
				break walk
			}
			cred, err := im.pool.Next(adapter.Name(), tried...)
			if errors.Is(err, credpool.ErrExhausted) {
				break
			}
			if err != nil {
				return nil, err
			}
			tried = append(tried, cred.ID)

			profile, warnings, attemptErr := im.attempt(ctx, adapter, subject, cred)
			if attemptErr == nil {
				im.writeSession(userID, model.SessionSuccess, successPayload{
					Provider:     adapter.Name(),
					CredentialID: cred.ID,
					Subject:      subject,
					Warnings:     warnings,
				})
				im.logger.Info("Import succeeded", "user_id", userID, "provider", adapter.Name(), "credential_id", cred.ID)
				return profile, nil
			}

			attempts = append(attempts, attemptRecord{
				Provider:     adapter.Name(),
				CredentialID: cred.ID,
				Kind:         provider.KindOf(attemptErr).String(),
				Error:        attemptErr.Error(),
			})
			im.logger.Warn("Import attempt failed", "user_id", userID, "provider", adapter.Name(), "credential_id", cred.ID, "error", attemptErr)
		}
	}

	im.writeSession(userID, model.SessionFailure, failurePayload{Subject: subject, Attempts: attempts})
	im.logger.Error("Import exhausted all providers", "user_id", userID, "attempts", len(attempts))
	return nil, &Error{Kind: KindExhausted, Message: "import failed, try again later"}
}

// attempt runs one acquisition with one credential, recording the outcome
// against the pool regardless of how it ends. A payload that fails
// normalization counts as a failed attempt for this credential; it does not
// indict the whole provider.
func (im *Importer) attempt(ctx context.Context, adapter provider.Adapter, subject string, cred *model.ApiCredential) (*model.CanonicalProfile, []string, error) {
	raw, err := adapter.Acquire(ctx, subject, cred)
	if err != nil {
		im.pool.RecordFailure(cred, provider.KindOf(err))
		return nil, nil, err
	}

	profile, warnings, err := im.normalizer.Normalize(raw)
	if err != nil {
		im.pool.RecordFailure(cred, provider.KindTransient)
		return nil, nil, err
	}

	im.pool.RecordSuccess(cred)
	return profile, warnings, nil
}

// writeSession appends the audit record for a terminal outcome. A session
// write failure is logged, not surfaced: the import result stands on its own.
func (im *Importer) writeSession(userID, kind string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		im.logger.Error("Failed to encode session payload", "user_id", userID, "error", err)
		body = nil
	}
	now := im.now()
	session := &model.ImportSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Payload:   body,
		CreatedAt: now,
		ExpiresAt: now.Add(im.retention),
	}
	if err := im.db.CreateImportSession(session); err != nil {
		im.logger.Error("Failed to write import session", "user_id", userID, "kind", kind, "error", err)
	}
}
