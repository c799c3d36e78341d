package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "meridian/contexts/sync-core/entity-sync/domain/errors"
	"meridian/contexts/sync-core/entity-sync/ports"
)

// Store adapts one gorm-mapped syncable table to the engine's RecordStore.
// The row type owns the wire document shape; sync columns live alongside
// business columns with no separate metadata table.
type Store[M any] struct {
	db     *gorm.DB
	entity string
	logger *slog.Logger
}

func newStore[M any](db *gorm.DB, entity string, logger *slog.Logger) *Store[M] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[M]{
		db:     db,
		entity: entity,
		logger: logger,
	}
}

func NewPatientStore(db *gorm.DB, logger *slog.Logger) ports.TenantRecordStore {
	return newStore[patientRow](db, "Patient", logger)
}

func NewInvoiceStore(db *gorm.DB, logger *slog.Logger) ports.TenantRecordStore {
	return newStore[invoiceRow](db, "Invoice", logger)
}

func NewAppUserStore(db *gorm.DB, logger *slog.Logger) ports.TenantRecordStore {
	return newStore[appUserRow](db, "AppUser", logger)
}

func NewUserProfileStore(db *gorm.DB, logger *slog.Logger) ports.TenantRecordStore {
	return newStore[userProfileRow](db, "UserProfile", logger)
}

// NewSubscriptionStore projects the tenant_subscriptions table owned by the
// subscription service; the engine only applies pulled authoritative copies.
func NewSubscriptionStore(db *gorm.DB, logger *slog.Logger) ports.RecordStore {
	return newStore[tenantSubscriptionRow](db, "TenantSubscription", logger)
}

func (s *Store[M]) EntityName() string {
	return s.entity
}

func (s *Store[M]) ListUnsynced(ctx context.Context) ([]ports.Record, error) {
	var rows []M
	if err := s.db.WithContext(ctx).
		Where("is_synced = ?", false).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rowsToRecords(rows)
}

func (s *Store[M]) ListUnsyncedForTenant(ctx context.Context, tenantID string) ([]ports.Record, error) {
	var rows []M
	if err := s.db.WithContext(ctx).
		Where("is_synced = ? AND tenant_id = ?", false, tenantID).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rowsToRecords(rows)
}

func (s *Store[M]) MarkSynced(ctx context.Context, ids []string, syncVersion int64) error {
	if len(ids) == 0 {
		return nil
	}
	var model M
	return s.db.WithContext(ctx).
		Model(&model).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"is_synced":    true,
			"sync_version": syncVersion,
		}).
		Error
}

func (s *Store[M]) Get(ctx context.Context, id string) (ports.Record, bool, error) {
	var row M
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Record{}, false, nil
		}
		return ports.Record{}, false, err
	}
	record, err := rowToRecord(row)
	if err != nil {
		return ports.Record{}, false, err
	}
	return record, true, nil
}

func (s *Store[M]) Insert(ctx context.Context, record ports.Record) error {
	row, err := decodeRow[M](record)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store[M]) Replace(ctx context.Context, record ports.Record) error {
	row, err := decodeRow[M](record)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func rowsToRecords[M any](rows []M) ([]ports.Record, error) {
	out := make([]ports.Record, 0, len(rows))
	for _, row := range rows {
		record, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func rowToRecord[M any](row M) (ports.Record, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return ports.Record{}, err
	}
	var head struct {
		ID        string     `json:"id"`
		TenantID  string     `json:"tenant_id"`
		UpdatedAt *time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return ports.Record{}, err
	}
	if head.ID == "" {
		return ports.Record{}, domainerrors.ErrMalformedRecord
	}
	return ports.Record{
		ID:        head.ID,
		TenantID:  head.TenantID,
		UpdatedAt: head.UpdatedAt,
		Payload:   payload,
	}, nil
}

// decodeRow maps a wire document into the concrete row. Documents from the
// authority that omit the is_synced key are treated as synced so they are
// not echoed back on the next push.
func decodeRow[M any](record ports.Record) (M, error) {
	var row M
	payload := record.Payload

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return row, err
	}
	if _, ok := probe["is_synced"]; !ok {
		probe["is_synced"] = json.RawMessage("true")
		stamped, err := json.Marshal(probe)
		if err == nil {
			payload = stamped
		}
	}

	if err := json.Unmarshal(payload, &row); err != nil {
		return row, err
	}
	return row, nil
}
