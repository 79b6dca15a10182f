package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"profileimport/internal/config"
	"profileimport/internal/db"
	"profileimport/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, db.Service) {
	gin.SetMode(gin.TestMode)
	dbService, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	router := gin.New()
	cfg := &config.Config{Admin: config.AdminConfig{Password: "secret"}}
	SetupRoutes(router, dbService, cfg)
	return router, dbService
}

func adminRequest(method, path string, body interface{}) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.SetBasicAuth("admin", "secret")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminAuthRequired(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin/credentials", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCredentialHandlers(t *testing.T) {
	router, dbService := setupTestRouter(t)

	t.Run("create", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPost, "/admin/credentials", gin.H{
			"provider":    "scrapin",
			"secret":      "s1",
			"priority":    1,
			"daily_limit": 100,
		}))
		require.Equal(t, http.StatusCreated, rr.Code)

		var created model.ApiCredential
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.True(t, created.Active)
		assert.Equal(t, model.ResultUnknown, created.LastResult)
		assert.Equal(t, 100, created.DailyLimit)
	})

	t.Run("create rejects missing fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPost, "/admin/credentials", gin.H{"provider": "scrapin"}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodGet, "/admin/credentials?provider=scrapin", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Credentials []model.ApiCredential `json:"credentials"`
			Total       int64                 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Total)
		require.Len(t, resp.Credentials, 1)
	})

	t.Run("get update deactivate activate delete", func(t *testing.T) {
		cred := &model.ApiCredential{Provider: "brightdata", Secret: "b1", Active: true}
		require.NoError(t, dbService.CreateCredential(cred))
		base := fmt.Sprintf("/admin/credentials/%d", cred.ID)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodGet, base, nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPut, base, gin.H{"priority": 7}))
		require.Equal(t, http.StatusOK, rr.Code)
		updated, err := dbService.GetCredential(cred.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Priority)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPost, base+"/deactivate", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		updated, _ = dbService.GetCredential(cred.ID)
		assert.False(t, updated.Active)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPost, base+"/activate", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		updated, _ = dbService.GetCredential(cred.ID)
		assert.True(t, updated.Active)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodDelete, base, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		_, err = dbService.GetCredential(cred.ID)
		assert.Error(t, err)
	})

	t.Run("get unknown credential", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodGet, "/admin/credentials/9999", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodGet, "/admin/credentials/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestServiceKeyHandlers(t *testing.T) {
	router, dbService := setupTestRouter(t)

	t.Run("create and list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodPost, "/admin/service-keys", gin.H{"key": "svc-1"}))
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodGet, "/admin/service-keys", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "svc-1")
	})

	t.Run("delete", func(t *testing.T) {
		key, err := dbService.FindServiceKeyByKey("svc-1")
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, adminRequest(http.MethodDelete, fmt.Sprintf("/admin/service-keys/%d", key.ID), nil))
		require.Equal(t, http.StatusOK, rr.Code)

		keys, err := dbService.ListServiceKeys()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
