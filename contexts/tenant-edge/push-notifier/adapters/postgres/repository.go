package postgresadapter

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
	domainerrors "meridian/contexts/tenant-edge/push-notifier/domain/errors"
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

func (r *Repository) Create(ctx context.Context, node entities.TenantNode) error {
	row := nodeModelFromEntity(node)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]entities.TenantNode, error) {
	return r.list(ctx, tenantID, false)
}

func (r *Repository) ListActiveByTenant(ctx context.Context, tenantID string) ([]entities.TenantNode, error) {
	return r.list(ctx, tenantID, true)
}

func (r *Repository) list(ctx context.Context, tenantID string, activeOnly bool) ([]entities.TenantNode, error) {
	tx := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var rows []tenantNodeModel
	if err := tx.Order("registered_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.TenantNode, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetNode(ctx context.Context, nodeID string) (entities.TenantNode, error) {
	var row tenantNodeModel
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.TenantNode{}, domainerrors.ErrNodeNotFound
		}
		return entities.TenantNode{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateSecret(ctx context.Context, nodeID string, secret string) error {
	result := r.db.WithContext(ctx).
		Model(&tenantNodeModel{}).
		Where("node_id = ?", nodeID).
		Update("callback_secret", secret)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNodeNotFound
	}
	return nil
}

func (r *Repository) SetActive(ctx context.Context, nodeID string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&tenantNodeModel{}).
		Where("node_id = ?", nodeID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNodeNotFound
	}
	return nil
}

type tenantNodeModel struct {
	NodeID         string    `gorm:"column:node_id;primaryKey"`
	TenantID       string    `gorm:"column:tenant_id;index"`
	CallbackURL    string    `gorm:"column:callback_url"`
	Name           string    `gorm:"column:name"`
	IsActive       bool      `gorm:"column:is_active"`
	RegisteredAt   time.Time `gorm:"column:registered_at"`
	CallbackSecret string    `gorm:"column:callback_secret"`
}

func (tenantNodeModel) TableName() string {
	return "tenant_nodes"
}

func (m tenantNodeModel) toEntity() entities.TenantNode {
	return entities.TenantNode{
		NodeID:         m.NodeID,
		TenantID:       m.TenantID,
		CallbackURL:    m.CallbackURL,
		Name:           m.Name,
		IsActive:       m.IsActive,
		RegisteredAt:   m.RegisteredAt.UTC(),
		CallbackSecret: m.CallbackSecret,
	}
}

func nodeModelFromEntity(node entities.TenantNode) tenantNodeModel {
	return tenantNodeModel{
		NodeID:         node.NodeID,
		TenantID:       node.TenantID,
		CallbackURL:    node.CallbackURL,
		Name:           node.Name,
		IsActive:       node.IsActive,
		RegisteredAt:   node.RegisteredAt.UTC(),
		CallbackSecret: node.CallbackSecret,
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// RandomSecretGenerator issues 32 random bytes, base64-encoded.
type RandomSecretGenerator struct{}

func (RandomSecretGenerator) NewSecret(_ context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
