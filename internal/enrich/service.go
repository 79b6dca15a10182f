package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"profileimport/internal/model"
)

// Enrichment is distinct from the import transaction: each operation is
// idempotent and retryable, keyed by (userID, cvID) or (userID, cvID,
// skillID), and gated above the free tier.
var (
	ErrTierNotAllowed      = errors.New("enrichment is not available on this tier")
	ErrInsufficientProfile = errors.New("profile lacks the data required for enrichment")
)

// Service generates AI summary and skill text for imported profiles.
type Service struct {
	gen    Generator
	logger *slog.Logger

	mu    sync.Mutex
	texts map[string]string
}

func NewService(gen Generator, logger *slog.Logger) *Service {
	return &Service{
		gen:    gen,
		logger: logger.With("component", "enrich"),
		texts:  make(map[string]string),
	}
}

// GenerateSummary produces a professional summary for a CV. Repeat calls with
// the same (userID, cvID) return the first result without calling the model
// again.
func (s *Service) GenerateSummary(ctx context.Context, userID, cvID, tier string, profile *model.CanonicalProfile) (string, error) {
	if tier == model.TierFree {
		return "", ErrTierNotAllowed
	}
	if profile == nil || profile.PersonalInfo.FullName == "" {
		return "", ErrInsufficientProfile
	}

	key := fmt.Sprintf("summary:%s:%s", userID, cvID)
	if text, ok := s.lookup(key); ok {
		return text, nil
	}

	text, err := s.gen.GenerateText(ctx, summaryPrompt(profile))
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}
	s.store(key, text)
	s.logger.Info("Generated summary", "user_id", userID, "cv_id", cvID)
	return text, nil
}

// GenerateSkillDescription produces a short description for one skill. The
// profile must carry skills; a request for an unknown skill id is rejected
// before calling the model.
func (s *Service) GenerateSkillDescription(ctx context.Context, userID, cvID, skillID, tier string, profile *model.CanonicalProfile) (string, error) {
	if tier == model.TierFree {
		return "", ErrTierNotAllowed
	}
	if profile == nil || len(profile.Skills) == 0 {
		return "", ErrInsufficientProfile
	}

	var skill *model.Skill
	for i := range profile.Skills {
		if profile.Skills[i].ID == skillID {
			skill = &profile.Skills[i]
			break
		}
	}
	if skill == nil {
		return "", ErrInsufficientProfile
	}

	key := fmt.Sprintf("skill:%s:%s:%s", userID, cvID, skillID)
	if text, ok := s.lookup(key); ok {
		return text, nil
	}

	text, err := s.gen.GenerateText(ctx, skillPrompt(profile, skill))
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}
	s.store(key, text)
	s.logger.Info("Generated skill description", "user_id", userID, "cv_id", cvID, "skill_id", skillID)
	return text, nil
}

func (s *Service) lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.texts[key]
	return text, ok
}

func (s *Service) store(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[key] = text
}
