package db

import (
	"testing"
	"time"

	"profileimport/internal/config"
	"profileimport/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates a new in-memory SQLite database and returns a Service and the raw *gorm.DB.
func setupTestDB(t *testing.T) (Service, *gorm.DB) {
	service, err := NewService(config.DatabaseConfig{
		Type: "sqlite",
		DSN:  "file::memory:",
	})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}
	return service, service.GetDB()
}

func TestNewService(t *testing.T) {
	// Test with sqlite
	service, err := NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	assert.NoError(t, err)
	assert.NotNil(t, service)

	// Test with unsupported type
	_, err = NewService(config.DatabaseConfig{Type: "unsupported"})
	assert.Error(t, err)
}

func TestLoadActiveCredentials(t *testing.T) {
	service, db := setupTestDB(t)
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s1", Active: true, Priority: 1})
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s2", Active: false})
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s3", Active: true, Priority: 0})
	db.Create(&model.ApiCredential{Provider: "brightdata", Secret: "b1", Active: true})

	creds, err := service.LoadActiveCredentials("scrapin")
	assert.NoError(t, err)
	require.Len(t, creds, 2)
	// Ordered by priority
	assert.Equal(t, "s3", creds[0].Secret)
	assert.Equal(t, "s1", creds[1].Secret)
}

func TestRecordCredentialUse(t *testing.T) {
	service, db := setupTestDB(t)
	cred := model.ApiCredential{Provider: "scrapin", Secret: "s1", Active: true}
	db.Create(&cred)

	err := service.RecordCredentialUse(cred.ID, model.ResultSuccess)
	assert.NoError(t, err)
	err = service.RecordCredentialUse(cred.ID, model.ResultRateLimited)
	assert.NoError(t, err)

	var updated model.ApiCredential
	db.First(&updated, cred.ID)
	assert.Equal(t, int64(2), updated.UsageCount)
	assert.Equal(t, 2, updated.DailyUsage)
	assert.Equal(t, model.ResultRateLimited, updated.LastResult)
	assert.NotNil(t, updated.LastUsedAt)

	// A missing credential is not an error; an admin may have removed it.
	err = service.RecordCredentialUse(9999, model.ResultSuccess)
	assert.NoError(t, err)
}

func TestResetDailyUsage(t *testing.T) {
	service, db := setupTestDB(t)
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s1", DailyUsage: 10, UsageCount: 42})
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s2", DailyUsage: 3})
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s3", DailyUsage: 0})

	err := service.ResetDailyUsage()
	assert.NoError(t, err)

	var creds []model.ApiCredential
	db.Find(&creds)
	for _, c := range creds {
		assert.Equal(t, 0, c.DailyUsage)
	}
	// Lifetime counters are untouched
	var first model.ApiCredential
	db.First(&first, "secret = ?", "s1")
	assert.Equal(t, int64(42), first.UsageCount)
}

func TestSetCredentialActive(t *testing.T) {
	service, db := setupTestDB(t)
	cred := model.ApiCredential{Provider: "scrapin", Secret: "s1", Active: true}
	db.Create(&cred)

	err := service.SetCredentialActive(cred.ID, false)
	assert.NoError(t, err)

	var updated model.ApiCredential
	db.First(&updated, cred.ID)
	assert.False(t, updated.Active)

	err = service.SetCredentialActive(9999, true)
	assert.Error(t, err)
}

func TestListCredentials(t *testing.T) {
	service, db := setupTestDB(t)
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s1"})
	db.Create(&model.ApiCredential{Provider: "scrapin", Secret: "s2"})
	db.Create(&model.ApiCredential{Provider: "brightdata", Secret: "b1"})

	creds, total, err := service.ListCredentials(1, 10, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, creds, 3)

	creds, total, err = service.ListCredentials(1, 10, "scrapin")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, creds, 2)

	// Pagination
	creds, total, err = service.ListCredentials(2, 2, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, creds, 1)
}

func TestCountSuccessfulSessionsSince(t *testing.T) {
	service, db := setupTestDB(t)
	now := time.Now()
	db.Create(&model.ImportSession{ID: "a", UserID: "u1", Kind: model.SessionSuccess, CreatedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour)})
	db.Create(&model.ImportSession{ID: "b", UserID: "u1", Kind: model.SessionSuccess, CreatedAt: now.Add(-30 * time.Hour), ExpiresAt: now.Add(-6 * time.Hour)})
	db.Create(&model.ImportSession{ID: "c", UserID: "u1", Kind: model.SessionFailure, CreatedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour)})
	db.Create(&model.ImportSession{ID: "d", UserID: "u2", Kind: model.SessionSuccess, CreatedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour)})

	count, err := service.CountSuccessfulSessionsSince("u1", now.Add(-24*time.Hour))
	assert.NoError(t, err)
	// Only the recent success for u1 counts: failures and other users do not.
	assert.Equal(t, int64(1), count)
}

func TestDeleteExpiredSessions(t *testing.T) {
	service, db := setupTestDB(t)
	now := time.Now()
	db.Create(&model.ImportSession{ID: "old", UserID: "u1", Kind: model.SessionSuccess, CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)})
	db.Create(&model.ImportSession{ID: "fresh", UserID: "u1", Kind: model.SessionSuccess, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)})

	deleted, err := service.DeleteExpiredSessions(now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []model.ImportSession
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ID)
}

func TestServiceKeys(t *testing.T) {
	service, db := setupTestDB(t)

	key := &model.ServiceKey{Key: "svc-key", Status: "active"}
	assert.NoError(t, service.CreateServiceKey(key))

	found, err := service.FindServiceKeyByKey("svc-key")
	assert.NoError(t, err)
	assert.Equal(t, key.ID, found.ID)

	_, err = service.FindServiceKeyByKey("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, service.IncrementServiceKeyUsage("svc-key"))
	var updated model.ServiceKey
	db.First(&updated, "key = ?", "svc-key")
	assert.Equal(t, 1, updated.UsageCount)

	keys, err := service.ListServiceKeys()
	assert.NoError(t, err)
	assert.Len(t, keys, 1)

	assert.NoError(t, service.DeleteServiceKey(key.ID))
	keys, err = service.ListServiceKeys()
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCredentialCRUD(t *testing.T) {
	service, _ := setupTestDB(t)

	cred := &model.ApiCredential{Provider: "scrapin", Secret: "s1", Active: true, DailyLimit: 100}
	assert.NoError(t, service.CreateCredential(cred))

	got, err := service.GetCredential(cred.ID)
	assert.NoError(t, err)
	assert.Equal(t, "s1", got.Secret)
	assert.Equal(t, 100, got.DailyLimit)

	got.Priority = 5
	assert.NoError(t, service.UpdateCredential(got))
	got, err = service.GetCredential(cred.ID)
	assert.NoError(t, err)
	assert.Equal(t, 5, got.Priority)

	assert.NoError(t, service.DeleteCredential(cred.ID))
	_, err = service.GetCredential(cred.ID)
	assert.Error(t, err)
}
