package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a standalone income/expense ledger entry. It is created
// pending and decided exactly once: approve and reject both refuse records
// that already carry a decision.
type Transaction struct {
	ID           int               `gorm:"primary_key" json:"id"`
	Description  string            `gorm:"size:255;not null" json:"description"`
	Amount       decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"amount"`
	Type         TransactionType   `gorm:"size:20;not null" json:"type"`
	Status       TransactionStatus `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedById  int               `gorm:"index;not null" json:"createdById"`
	CreatedBy    *User             `gorm:"foreignKey:CreatedById" json:"createdBy,omitempty"`
	ApprovedById *int              `gorm:"index" json:"approvedById"`
	ApprovedBy   *User             `gorm:"foreignKey:ApprovedById" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time        `json:"approvedAt"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewTransaction struct {
	Description string               `json:"description"`
	Amount      utils.LenientDecimal `json:"amount"`
	Type        TransactionType      `json:"type"`
}

func CreateTransaction(ctx context.Context, db *gorm.DB, creatorId int, input *NewTransaction) (*Transaction, error) {
	if input == nil || strings.TrimSpace(input.Description) == "" || input.Amount.IsZero() || input.Type == "" {
		return nil, utils.NewValidationError("description, amount, and type are required.")
	}
	if !input.Type.Valid() {
		return nil, utils.NewValidationError("type must be expense or income.")
	}

	var createdBy User
	if err := db.WithContext(ctx).Where("id = ?", creatorId).Take(&createdBy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found.")
		}
		return nil, err
	}

	transaction := Transaction{
		Description: input.Description,
		Amount:      input.Amount.Decimal,
		Type:        input.Type,
		Status:      TransactionStatusPending,
		CreatedById: creatorId,
	}
	if err := db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, err
	}
	transaction.CreatedBy = &createdBy
	return &transaction, nil
}

// GetTransactions lists entries newest first, optionally filtered by status
// and type.
func GetTransactions(ctx context.Context, db *gorm.DB, status string, transactionType string) ([]*Transaction, error) {
	var results []*Transaction

	dbCtx := db.WithContext(ctx).Preload("CreatedBy").Preload("ApprovedBy")
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if transactionType != "" {
		dbCtx = dbCtx.Where("type = ?", transactionType)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DecideTransaction applies the one-shot approve/reject decision.
func DecideTransaction(ctx context.Context, db *gorm.DB, id int, approverId int, status TransactionStatus) (*Transaction, error) {
	var transaction Transaction
	err := db.WithContext(ctx).Preload("CreatedBy").Where("id = ?", id).Take(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Transaction not found.")
		}
		return nil, err
	}
	if transaction.Status != TransactionStatusPending {
		if status == TransactionStatusApproved {
			return nil, utils.NewConflictError("Only pending transactions can be approved.")
		}
		return nil, utils.NewConflictError("Only pending transactions can be rejected.")
	}

	var approver User
	if err := db.WithContext(ctx).Where("id = ?", approverId).Take(&approver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found.")
		}
		return nil, err
	}

	now := time.Now()
	err = db.WithContext(ctx).Model(&transaction).Updates(map[string]interface{}{
		"status":         status,
		"approved_by_id": approverId,
		"approved_at":    now,
	}).Error
	if err != nil {
		return nil, err
	}

	transaction.Status = status
	transaction.ApprovedById = &approverId
	transaction.ApprovedBy = &approver
	transaction.ApprovedAt = &now
	return &transaction, nil
}
