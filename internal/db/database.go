package db

import (
	"fmt"
	"time"

	"profileimport/internal/config"
	"profileimport/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Service is the persistence boundary for the import pipeline. The credential
// pool, importer, scheduler and admin handlers all talk to the database
// through this interface so tests can substitute mocks.
type Service interface {
	// Credentials
	LoadActiveCredentials(provider string) ([]model.ApiCredential, error)
	ListCredentials(page, limit int, provider string) ([]model.ApiCredential, int64, error)
	GetCredential(id uint) (*model.ApiCredential, error)
	CreateCredential(cred *model.ApiCredential) error
	UpdateCredential(cred *model.ApiCredential) error
	DeleteCredential(id uint) error
	SetCredentialActive(id uint, active bool) error
	RecordCredentialUse(id uint, result string) error
	ResetDailyUsage() error

	// Import sessions
	CreateImportSession(session *model.ImportSession) error
	CountSuccessfulSessionsSince(userID string, since time.Time) (int64, error)
	DeleteExpiredSessions(now time.Time) (int64, error)

	// Service keys
	CreateServiceKey(key *model.ServiceKey) error
	ListServiceKeys() ([]model.ServiceKey, error)
	GetServiceKey(id uint) (*model.ServiceKey, error)
	UpdateServiceKey(key *model.ServiceKey) error
	DeleteServiceKey(id uint) error
	FindServiceKeyByKey(key string) (*model.ServiceKey, error)
	IncrementServiceKeyUsage(key string) error

	GetDB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// NewService initializes the database connection based on the provided
// configuration and runs schema migration.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the schema
	err = db.AutoMigrate(&model.ApiCredential{}, &model.ImportSession{}, &model.ServiceKey{})
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &service{db: db}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// LoadActiveCredentials retrieves all active credentials for a provider,
// ordered by priority then usage count.
func (s *service) LoadActiveCredentials(provider string) ([]model.ApiCredential, error) {
	var creds []model.ApiCredential
	result := s.db.Model(&model.ApiCredential{}).
		Where("provider = ? AND active = ?", provider, true).
		Order("priority asc, usage_count asc").
		Find(&creds)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load credentials for provider %s: %w", provider, result.Error)
	}
	return creds, nil
}

func (s *service) ListCredentials(page, limit int, provider string) ([]model.ApiCredential, int64, error) {
	var creds []model.ApiCredential
	var total int64

	query := s.db.Model(&model.ApiCredential{})
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if err := query.Order("provider asc, priority asc").Offset((page - 1) * limit).Limit(limit).Find(&creds).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list credentials: %w", err)
	}
	return creds, total, nil
}

func (s *service) GetCredential(id uint) (*model.ApiCredential, error) {
	var cred model.ApiCredential
	if err := s.db.First(&cred, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get credential %d: %w", id, err)
	}
	return &cred, nil
}

func (s *service) CreateCredential(cred *model.ApiCredential) error {
	if err := s.db.Create(cred).Error; err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (s *service) UpdateCredential(cred *model.ApiCredential) error {
	if err := s.db.Save(cred).Error; err != nil {
		return fmt.Errorf("failed to update credential %d: %w", cred.ID, err)
	}
	return nil
}

func (s *service) DeleteCredential(id uint) error {
	if err := s.db.Delete(&model.ApiCredential{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete credential %d: %w", id, err)
	}
	return nil
}

func (s *service) SetCredentialActive(id uint, active bool) error {
	result := s.db.Model(&model.ApiCredential{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to set credential %d active=%t: %w", id, active, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("credential %d not found", id)
	}
	return nil
}

// RecordCredentialUse atomically increments the usage counters for a
// credential and stamps the attempt outcome. Called after every attempt,
// success or failure.
func (s *service) RecordCredentialUse(id uint, result string) error {
	res := s.db.Model(&model.ApiCredential{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"usage_count":  gorm.Expr("usage_count + 1"),
		"daily_usage":  gorm.Expr("daily_usage + 1"),
		"last_used_at": time.Now(),
		"last_result":  result,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to record use of credential %d: %w", id, res.Error)
	}
	// It's okay if RowsAffected is 0, the credential might have been removed
	// by an admin in the meantime.
	return nil
}

// ResetDailyUsage zeroes the daily usage counter on every credential. Run by
// the scheduler once a day.
func (s *service) ResetDailyUsage() error {
	result := s.db.Model(&model.ApiCredential{}).Where("daily_usage > 0").Update("daily_usage", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset daily credential usage: %w", result.Error)
	}
	return nil
}

func (s *service) CreateImportSession(session *model.ImportSession) error {
	if err := s.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create import session: %w", err)
	}
	return nil
}

// CountSuccessfulSessionsSince counts a user's successful imports in the
// window starting at since. Feeds the daily quota computation.
func (s *service) CountSuccessfulSessionsSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&model.ImportSession{}).
		Where("user_id = ? AND kind = ? AND created_at >= ?", userID, model.SessionSuccess, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count import sessions for user %s: %w", userID, err)
	}
	return count, nil
}

// DeleteExpiredSessions removes audit records past their retention window and
// returns how many were deleted.
func (s *service) DeleteExpiredSessions(now time.Time) (int64, error) {
	result := s.db.Where("expires_at <= ?", now).Delete(&model.ImportSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired import sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *service) CreateServiceKey(key *model.ServiceKey) error {
	if err := s.db.Create(key).Error; err != nil {
		return fmt.Errorf("failed to create service key: %w", err)
	}
	return nil
}

func (s *service) ListServiceKeys() ([]model.ServiceKey, error) {
	var keys []model.ServiceKey
	if err := s.db.Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list service keys: %w", err)
	}
	return keys, nil
}

func (s *service) GetServiceKey(id uint) (*model.ServiceKey, error) {
	var key model.ServiceKey
	if err := s.db.First(&key, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get service key %d: %w", id, err)
	}
	return &key, nil
}

func (s *service) UpdateServiceKey(key *model.ServiceKey) error {
	if err := s.db.Save(key).Error; err != nil {
		return fmt.Errorf("failed to update service key %d: %w", key.ID, err)
	}
	return nil
}

func (s *service) DeleteServiceKey(id uint) error {
	if err := s.db.Delete(&model.ServiceKey{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete service key %d: %w", id, err)
	}
	return nil
}

func (s *service) FindServiceKeyByKey(key string) (*model.ServiceKey, error) {
	var serviceKey model.ServiceKey
	if err := s.db.Where("key = ?", key).First(&serviceKey).Error; err != nil {
		return nil, err
	}
	return &serviceKey, nil
}

// IncrementServiceKeyUsage atomically increments the usage count for a
// service key.
func (s *service) IncrementServiceKeyUsage(key string) error {
	result := s.db.Model(&model.ServiceKey{}).Where("key = ?", key).UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage count for service key: %w", result.Error)
	}
	return nil
}
