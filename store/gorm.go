// Package store provides the persistent TransactionStore implementation
// backed by GORM. The in-memory store in the root package shares the same
// contract for tests and demo deployments.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	feez "github.com/feez-app/feez-go"
)

// transactionRow is the persisted shape of a feez.TransactionRecord.
type transactionRow struct {
	ID            string `gorm:"primaryKey"`
	TxHash        string `gorm:"index"`
	Chain         string `gorm:"index"`
	WalletAddress string `gorm:"index"`
	Action        string
	GasFeeUSDC    float64
	GasFeeNative  float64
	NativeToken   string
	Sponsored     bool
	Status        string `gorm:"index"`
	CreatedAt     time.Time
	ConfirmedAt   *time.Time
}

func (transactionRow) TableName() string {
	return "transactions"
}

// GormStore is a feez.TransactionStore backed by a GORM database.
type GormStore struct {
	db *gorm.DB
}

// Open opens (and migrates) a SQLite-backed store at the given path.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing GORM database, migrating the transactions
// table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&transactionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate transactions table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Create inserts a new record.
func (s *GormStore) Create(ctx context.Context, rec *feez.TransactionRecord) error {
	row := toRow(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("failed to insert transaction: %v", err), nil)
	}
	return nil
}

// Get returns the record with the given ID, or nil when absent.
func (s *GormStore) Get(ctx context.Context, id string) (*feez.TransactionRecord, error) {
	var row transactionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("failed to load transaction: %v", err), nil)
	}
	rec := fromRow(&row)
	return &rec, nil
}

// List returns matching records newest-first with the pre-pagination total.
func (s *GormStore) List(ctx context.Context, f feez.TransactionFilter) ([]feez.TransactionRecord, int64, error) {
	q := s.db.WithContext(ctx).Model(&transactionRow{})
	if f.WalletAddress != "" {
		q = q.Where("wallet_address = ?", f.WalletAddress)
	}
	if f.Chain != "" {
		q = q.Where("chain = ?", f.Chain)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("failed to count transactions: %v", err), nil)
	}

	q = q.Order("created_at DESC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []transactionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("failed to list transactions: %v", err), nil)
	}

	records := make([]feez.TransactionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, fromRow(&rows[i]))
	}
	return records, total, nil
}

// UpdateStatus transitions a record with a conditional update, so the
// watcher and any concurrent writer cannot overwrite a terminal state.
func (s *GormStore) UpdateStatus(ctx context.Context, id string, from, to feez.TxStatus) error {
	updates := map[string]interface{}{"status": string(to)}
	if to.Terminal() {
		now := time.Now().UTC()
		updates["confirmed_at"] = &now
	}

	res := s.db.WithContext(ctx).
		Model(&transactionRow{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("failed to update transaction: %v", res.Error), nil)
	}
	if res.RowsAffected == 0 {
		return feez.NewOpError(feez.ErrCodePersistenceFailure,
			fmt.Sprintf("transaction %s not in %s state", id, from), nil)
	}
	return nil
}

func toRow(rec *feez.TransactionRecord) transactionRow {
	return transactionRow{
		ID:            rec.ID,
		TxHash:        rec.TxHash,
		Chain:         rec.Chain,
		WalletAddress: rec.WalletAddress,
		Action:        string(rec.Action),
		GasFeeUSDC:    rec.GasFeeUSDC,
		GasFeeNative:  rec.GasFeeNative,
		NativeToken:   rec.NativeToken,
		Sponsored:     rec.Sponsored,
		Status:        string(rec.Status),
		CreatedAt:     rec.CreatedAt,
		ConfirmedAt:   rec.ConfirmedAt,
	}
}

func fromRow(row *transactionRow) feez.TransactionRecord {
	return feez.TransactionRecord{
		ID:            row.ID,
		TxHash:        row.TxHash,
		Chain:         row.Chain,
		WalletAddress: row.WalletAddress,
		Action:        feez.ActionKind(row.Action),
		GasFeeUSDC:    row.GasFeeUSDC,
		GasFeeNative:  row.GasFeeNative,
		NativeToken:   row.NativeToken,
		Sponsored:     row.Sponsored,
		Status:        feez.TxStatus(row.Status),
		CreatedAt:     row.CreatedAt,
		ConfirmedAt:   row.ConfirmedAt,
	}
}
