package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postpilot/postpilot/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetUserByID(userID uint) (*models.User, error)
	GetSubscriptionByUser(userID uint) (*models.Subscription, error)
	GetSubscriptionByRef(subscriptionRef string) (*models.Subscription, error)
	// MergeSubscription updates only the given columns on the user's
	// subscription row, creating the row if it does not exist yet.
	MergeSubscription(userID uint, fields map[string]any) error
	AppendPaymentRecord(rec *models.PaymentRecord) error
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByID(userID uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetSubscriptionByUser(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByRef(subscriptionRef string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("subscription_ref = ?", subscriptionRef).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) MergeSubscription(userID uint, fields map[string]any) error {
	res := r.db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row yet (user predates implicit signup seeding); create one with
	// the incoming fields only.
	sub := models.Subscription{UserID: userID, Plan: "free"}
	applySubscriptionFields(&sub, fields)
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(fields),
	}).Create(&sub).Error
}

func applySubscriptionFields(sub *models.Subscription, fields map[string]any) {
	if v, ok := fields["plan"].(string); ok {
		sub.Plan = v
	}
	if v, ok := fields["status"].(string); ok {
		sub.Status = v
	}
	if v, ok := fields["customer_ref"].(string); ok {
		sub.CustomerRef = v
	}
	if v, ok := fields["subscription_ref"].(string); ok {
		sub.SubscriptionRef = v
	}
	if v, ok := fields["current_period_end"].(*time.Time); ok {
		sub.CurrentPeriodEnd = v
	}
}

func (r *gormRepository) AppendPaymentRecord(rec *models.PaymentRecord) error {
	return r.db.Create(rec).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
