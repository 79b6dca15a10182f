package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"profileimport/internal/enrich"
	"profileimport/internal/importer"
	"profileimport/internal/model"

	"github.com/gin-gonic/gin"
)

// ImportService is the orchestrator surface the handler needs.
type ImportService interface {
	Import(ctx context.Context, userID, tier, rawInput string) (*model.CanonicalProfile, error)
	RemainingQuota(userID, tier string) (int, error)
}

// EnrichService generates AI text for imported profiles.
type EnrichService interface {
	GenerateSummary(ctx context.Context, userID, cvID, tier string, profile *model.CanonicalProfile) (string, error)
	GenerateSkillDescription(ctx context.Context, userID, cvID, skillID, tier string, profile *model.CanonicalProfile) (string, error)
}

// CredentialPool reports how many credentials are currently usable per
// provider, for the health endpoint.
type CredentialPool interface {
	AvailableCount(provider string) int
}

type Handler struct {
	importer  ImportService
	enrich    EnrichService
	pool      CredentialPool
	providers []string
	logger    *slog.Logger
}

// NewHandler wires the import API. enrichSvc may be nil when no generation
// API key is configured; the enrichment endpoints then return 503.
func NewHandler(importSvc ImportService, enrichSvc EnrichService, pool CredentialPool, providers []string, logger *slog.Logger) *Handler {
	return &Handler{
		importer:  importSvc,
		enrich:    enrichSvc,
		pool:      pool,
		providers: providers,
		logger:    logger.With("component", "api"),
	}
}

// HealthHandler reports liveness and per-provider credential availability.
func (h *Handler) HealthHandler(c *gin.Context) {
	credentials := make(map[string]int, len(h.providers))
	for _, name := range h.providers {
		credentials[name] = h.pool.AvailableCount(name)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "credentials": credentials})
}

type importRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Tier       string `json:"tier" binding:"required"`
	ProfileURL string `json:"profile_url" binding:"required"`
}

// ImportHandler runs the acquisition pipeline. Quota and invalid-input
// failures are specific; every acquisition-layer failure collapses to one
// generic outcome so callers never see provider-internal error text.
func (h *Handler) ImportHandler(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	profile, err := h.importer.Import(c.Request.Context(), req.UserID, req.Tier, req.ProfileURL)
	if err != nil {
		var impErr *importer.Error
		if errors.As(err, &impErr) {
			switch impErr.Kind {
			case importer.KindInvalidInput:
				c.JSON(http.StatusBadRequest, gin.H{"error": impErr.Message})
			case importer.KindQuotaExceeded:
				c.JSON(http.StatusTooManyRequests, gin.H{"error": impErr.Message, "remaining": impErr.Remaining})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": impErr.Message})
			}
			return
		}
		h.logger.Error("Import failed with unclassified error", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type quotaRequest struct {
	UserID string `form:"user_id" binding:"required"`
	Tier   string `form:"tier" binding:"required"`
}

func (h *Handler) QuotaHandler(c *gin.Context) {
	var req quotaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and tier are required"})
		return
	}
	remaining, err := h.importer.RemainingQuota(req.UserID, req.Tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute quota"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining, "unlimited": remaining == model.QuotaUnlimited})
}

type summaryRequest struct {
	UserID  string                 `json:"user_id" binding:"required"`
	CVID    string                 `json:"cv_id" binding:"required"`
	Tier    string                 `json:"tier" binding:"required"`
	Profile model.CanonicalProfile `json:"profile" binding:"required"`
}

func (h *Handler) SummaryHandler(c *gin.Context) {
	if h.enrich == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Enrichment is not configured"})
		return
	}
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	text, err := h.enrich.GenerateSummary(c.Request.Context(), req.UserID, req.CVID, req.Tier, &req.Profile)
	if err != nil {
		h.enrichError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

type skillRequest struct {
	UserID  string                 `json:"user_id" binding:"required"`
	CVID    string                 `json:"cv_id" binding:"required"`
	SkillID string                 `json:"skill_id" binding:"required"`
	Tier    string                 `json:"tier" binding:"required"`
	Profile model.CanonicalProfile `json:"profile" binding:"required"`
}

func (h *Handler) SkillHandler(c *gin.Context) {
	if h.enrich == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Enrichment is not configured"})
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	text, err := h.enrich.GenerateSkillDescription(c.Request.Context(), req.UserID, req.CVID, req.SkillID, req.Tier, &req.Profile)
	if err != nil {
		h.enrichError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *Handler) enrichError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, enrich.ErrTierNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, enrich.ErrInsufficientProfile):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Enrichment failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Text generation failed, try again"})
	}
}
