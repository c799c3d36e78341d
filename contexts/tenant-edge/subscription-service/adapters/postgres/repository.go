package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meridian/contexts/tenant-edge/subscription-service/domain/entities"
	domainerrors "meridian/contexts/tenant-edge/subscription-service/domain/errors"
	"meridian/contexts/tenant-edge/subscription-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetByTenant(ctx context.Context, tenantID string) (entities.Subscription, bool, error) {
	var row subscriptionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Subscription{}, false, nil
		}
		return entities.Subscription{}, false, err
	}
	return row.toEntity(), true, nil
}

// SaveWithOutbox commits the subscription and its outbox row in one
// transaction. The write clears is_synced so the sync engine picks the
// change up on its next push cycle.
func (r *Repository) SaveWithOutbox(ctx context.Context, subscription entities.Subscription, event ports.StatusChangedEvent) error {
	subscriptionRow := subscriptionModelFromEntity(subscription)
	outboxRow := outboxMessageModel{
		ID:         event.EventID,
		EventType:  event.EventType,
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(&subscriptionRow).
			Error
		if err != nil {
			// Conflicting on tenant_id means a concurrent writer created a
			// row with a different id between read and write.
			if isUniqueViolation(err) {
				return domainerrors.ErrSubscriptionConflict
			}
			return err
		}
		return tx.Create(&outboxRow).Error
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type subscriptionModel struct {
	ID                    string     `gorm:"column:id;primaryKey"`
	TenantID              string     `gorm:"column:tenant_id;uniqueIndex"`
	Plan                  string     `gorm:"column:plan"`
	Status                string     `gorm:"column:status"`
	StartAt               *time.Time `gorm:"column:start_at"`
	EndAt                 *time.Time `gorm:"column:end_at"`
	RenewalAt             *time.Time `gorm:"column:renewal_at"`
	BillingCustomerID     string     `gorm:"column:billing_customer_id"`
	BillingSubscriptionID string     `gorm:"column:billing_subscription_id"`
	UpdatedAt             *time.Time `gorm:"column:updated_at"`
	IsSynced              bool       `gorm:"column:is_synced"`
	SyncVersion           int64      `gorm:"column:sync_version"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
}

func (subscriptionModel) TableName() string {
	return "tenant_subscriptions"
}

func subscriptionModelFromEntity(subscription entities.Subscription) subscriptionModel {
	return subscriptionModel{
		ID:        subscription.ID,
		TenantID:  subscription.TenantID,
		Plan:      subscription.Plan,
		Status:    string(subscription.Status),
		StartAt:   subscription.StartAt,
		EndAt:     subscription.EndAt,
		RenewalAt: subscription.RenewalAt,
		UpdatedAt: subscription.UpdatedAt,
		IsSynced:  false,
	}
}

func (m subscriptionModel) toEntity() entities.Subscription {
	status, err := entities.ParseStatus(m.Status)
	if err != nil {
		status = entities.StatusInactive
	}
	return entities.Subscription{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Plan:      m.Plan,
		Status:    status,
		StartAt:   m.StartAt,
		EndAt:     m.EndAt,
		RenewalAt: m.RenewalAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// outboxMessageModel mirrors the outbox ledger schema owned by the dispatch
// worker. The table is shared on purpose; the type is not, so this module
// stays free of cross-module imports.
type outboxMessageModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	OccurredAt  time.Time  `gorm:"column:occurred_at"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	Attempts    int        `gorm:"column:attempts"`
}

func (outboxMessageModel) TableName() string {
	return "outbox_messages"
}
