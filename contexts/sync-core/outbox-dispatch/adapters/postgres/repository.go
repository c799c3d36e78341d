package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"meridian/contexts/sync-core/outbox-dispatch/domain/entities"
	domainerrors "meridian/contexts/sync-core/outbox-dispatch/domain/errors"
)

// Repository is the Postgres outbox ledger. Rows are append-only; the worker
// only ever sets processed_at and bumps attempts.
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

// AppendTx inserts an outbox row inside the caller's transaction. Producer
// repositories compose this into their own unit of work so the event is
// recorded iff the business write commits.
func AppendTx(tx *gorm.DB, message entities.OutboxMessage) error {
	if message.ID == "" || message.EventType == "" {
		return domainerrors.ErrInvalidMessage
	}
	row := outboxMessageModel{
		ID:         message.ID,
		EventType:  message.EventType,
		Payload:    message.Payload,
		OccurredAt: message.OccurredAt.UTC(),
		Attempts:   message.Attempts,
	}
	return tx.Create(&row).Error
}

// Append inserts a row in its own transaction, for producers without one.
func (r *Repository) Append(ctx context.Context, message entities.OutboxMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AppendTx(tx, message)
	})
}

func (r *Repository) NextUnprocessed(ctx context.Context) (entities.OutboxMessage, bool, error) {
	var row outboxMessageModel
	err := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("occurred_at ASC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OutboxMessage{}, false, nil
		}
		return entities.OutboxMessage{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxMessageModel{}).
		Where("id = ?", id).
		Update("processed_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMessageNotFound
	}
	return nil
}

func (r *Repository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&outboxMessageModel{}).
			Where("id = ?", id).
			Update("attempts", gorm.Expr("attempts + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrMessageNotFound
		}
		return tx.
			Model(&outboxMessageModel{}).
			Select("attempts").
			Where("id = ?", id).
			Scan(&attempts).
			Error
	})
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

type outboxMessageModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	OccurredAt  time.Time  `gorm:"column:occurred_at;index:idx_outbox_pending"`
	ProcessedAt *time.Time `gorm:"column:processed_at;index:idx_outbox_pending"`
	Attempts    int        `gorm:"column:attempts"`
}

func (outboxMessageModel) TableName() string {
	return "outbox_messages"
}

func (m outboxMessageModel) toEntity() entities.OutboxMessage {
	entity := entities.OutboxMessage{
		ID:         m.ID,
		EventType:  m.EventType,
		Payload:    m.Payload,
		OccurredAt: m.OccurredAt.UTC(),
		Attempts:   m.Attempts,
	}
	if m.ProcessedAt != nil {
		processed := m.ProcessedAt.UTC()
		entity.ProcessedAt = &processed
	}
	return entity
}
