package social

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postpilot/postpilot/app/models"
)

// Repository provides DB operations for connections and the publish audit
// log.
type Repository interface {
	GetConnectionByUser(userID uint) (*models.SocialConnection, error)
	// ReplaceConnection overwrites the user's connection wholesale. Every
	// column takes the incoming value, including clearing last_used_at.
	ReplaceConnection(conn *models.SocialConnection) error
	DeleteConnection(userID uint) error
	// TouchLastUsed updates only the last_used_at column.
	TouchLastUsed(userID uint, at time.Time) error
	CreatePublishAttempt(ctx context.Context, attempt *models.PublishAttempt) error
	ListPublishAttempts(userID uint, limit int) ([]models.PublishAttempt, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetConnectionByUser(userID uint) (*models.SocialConnection, error) {
	var conn models.SocialConnection
	err := r.db.Where("user_id = ?", userID).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *gormRepository) ReplaceConnection(conn *models.SocialConnection) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(conn).Error
}

func (r *gormRepository) DeleteConnection(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.SocialConnection{}).Error
}

func (r *gormRepository) TouchLastUsed(userID uint, at time.Time) error {
	return r.db.Model(&models.SocialConnection{}).
		Where("user_id = ?", userID).
		Update("last_used_at", at).Error
}

func (r *gormRepository) CreatePublishAttempt(ctx context.Context, attempt *models.PublishAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *gormRepository) ListPublishAttempts(userID uint, limit int) ([]models.PublishAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var attempts []models.PublishAttempt
	err := r.db.Where("user_id = ?", userID).
		Order("published_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
