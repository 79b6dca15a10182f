package admin

import (
	"net/http"
	"strconv"

	"profileimport/internal/db"
	"profileimport/internal/model"

	"github.com/gin-gonic/gin"
)

// Handler exposes administrative CRUD over provider credentials and service
// keys. The acquisition pipeline never deletes or deactivates credentials
// itself; those are operator actions that land here.
type Handler struct {
	db db.Service
}

func NewHandler(dbService db.Service) *Handler {
	return &Handler{db: dbService}
}

type createCredentialRequest struct {
	Provider   string `json:"provider" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
	Priority   int    `json:"priority"`
	DailyLimit int    `json:"daily_limit"`
}

func (h *Handler) ListCredentialsHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	provider := c.Query("provider")

	creds, total, err := h.db.ListCredentials(page, limit, provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"credentials": creds, "total": total, "page": page, "limit": limit})
}

func (h *Handler) CreateCredentialHandler(c *gin.Context) {
	var req createCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cred := &model.ApiCredential{
		Provider:   req.Provider,
		Secret:     req.Secret,
		Active:     true,
		Priority:   req.Priority,
		DailyLimit: req.DailyLimit,
		LastResult: model.ResultUnknown,
	}
	if err := h.db.CreateCredential(cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create credential"})
		return
	}
	c.JSON(http.StatusCreated, cred)
}

func (h *Handler) GetCredentialHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}
	cred, err := h.db.GetCredential(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Credential not found"})
		return
	}
	c.JSON(http.StatusOK, cred)
}

type updateCredentialRequest struct {
	Priority   *int `json:"priority"`
	DailyLimit *int `json:"daily_limit"`
}

func (h *Handler) UpdateCredentialHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}
	var req updateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cred, err := h.db.GetCredential(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Credential not found"})
		return
	}
	if req.Priority != nil {
		cred.Priority = *req.Priority
	}
	if req.DailyLimit != nil {
		cred.DailyLimit = *req.DailyLimit
	}
	if err := h.db.UpdateCredential(cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update credential"})
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (h *Handler) DeleteCredentialHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}
	if err := h.db.DeleteCredential(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete credential"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credential deleted"})
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}
	if err := h.db.SetCredentialActive(uint(id), active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Credential not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credential updated"})
}

func (h *Handler) ActivateCredentialHandler(c *gin.Context)   { h.setActive(c, true) }
func (h *Handler) DeactivateCredentialHandler(c *gin.Context) { h.setActive(c, false) }

type createServiceKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *Handler) ListServiceKeysHandler(c *gin.Context) {
	keys, err := h.db.ListServiceKeys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list service keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *Handler) CreateServiceKeyHandler(c *gin.Context) {
	var req createServiceKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	key := &model.ServiceKey{Key: req.Key, Status: "active"}
	if err := h.db.CreateServiceKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service key"})
		return
	}
	c.JSON(http.StatusCreated, key)
}

func (h *Handler) DeleteServiceKeyHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return
	}
	if err := h.db.DeleteServiceKey(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service key deleted"})
}
