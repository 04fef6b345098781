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

// Budget is a named spending proposal: categories of costed line items plus
// an approval status. TotalAmount is always derived from the items; it is
// never taken from client input.
type Budget struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Program       string          `gorm:"size:255" json:"program"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"totalAmount"`
	AmountUsed    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amountUsed"`
	Status        BudgetStatus    `gorm:"size:30;not null;default:pending_approval" json:"status"`
	StatusComment string          `gorm:"type:text" json:"statusComment"`
	UserId        int             `gorm:"index" json:"userId"`
	CreatedBy     *User           `gorm:"foreignKey:UserId" json:"createdBy,omitempty"`
	Categories    []*Category     `gorm:"foreignKey:BudgetId;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type Category struct {
	ID       int     `gorm:"primary_key" json:"id"`
	BudgetId int     `gorm:"index;not null" json:"budgetId"`
	Name     string  `gorm:"size:255;not null" json:"name"`
	Items    []*Item `gorm:"foreignKey:CategoryId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type Item struct {
	ID         int             `gorm:"primary_key" json:"id"`
	CategoryId int             `gorm:"index;not null" json:"categoryId"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unitPrice"`
	Period     string          `gorm:"size:100" json:"period"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"totalPrice"`
}

type NewBudget struct {
	Name       string         `json:"name"`
	Program    string         `json:"program"`
	Categories []*NewCategory `json:"categories"`
}

type NewCategory struct {
	Name  string     `json:"name"`
	Items []*NewItem `json:"items"`
}

type NewItem struct {
	Name      string               `json:"name"`
	Quantity  utils.LenientDecimal `json:"quantity"`
	UnitPrice utils.LenientDecimal `json:"unitPrice"`
	Period    string               `json:"period"`
}

const editAwaitingReapprovalComment = "Edited - Awaiting re-approval."

// ComputeBudgetTotals builds the category/item rows for a budget from client
// input. Pure: every item gets totalPrice = quantity * unitPrice and the
// returned total is the sum over all items. Malformed numbers were already
// coerced to zero during decoding.
func ComputeBudgetTotals(input []*NewCategory) ([]*Category, decimal.Decimal) {
	total := decimal.Zero
	categories := make([]*Category, 0, len(input))
	for _, catData := range input {
		category := &Category{Name: catData.Name}
		for _, itemData := range catData.Items {
			item := &Item{
				Name:       itemData.Name,
				Quantity:   itemData.Quantity.Decimal,
				UnitPrice:  itemData.UnitPrice.Decimal,
				Period:     itemData.Period,
				TotalPrice: itemData.Quantity.Decimal.Mul(itemData.UnitPrice.Decimal),
			}
			total = total.Add(item.TotalPrice)
			category.Items = append(category.Items, item)
		}
		categories = append(categories, category)
	}
	return categories, total
}

func (input *NewBudget) validate() error {
	if input == nil || strings.TrimSpace(input.Name) == "" || input.Categories == nil {
		return utils.NewValidationError("Budget name and a valid categories array are required.")
	}
	return nil
}

// CreateBudget stores a new budget aggregate in pending_approval.
func CreateBudget(ctx context.Context, db *gorm.DB, userId int, input *NewBudget) (*Budget, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	categories, total := ComputeBudgetTotals(input.Categories)
	budget := Budget{
		Name:        input.Name,
		Program:     input.Program,
		TotalAmount: total,
		Status:      BudgetStatusPendingApproval,
		UserId:      userId,
		Categories:  categories,
	}
	if err := db.WithContext(ctx).Create(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func GetBudgets(ctx context.Context, db *gorm.DB) ([]*Budget, error) {
	var results []*Budget
	err := db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetBudget(ctx context.Context, db *gorm.DB, id int) (*Budget, error) {
	var budget Budget
	err := db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Categories").
		Preload("Categories.Items").
		Where("id = ?", id).
		Take(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Budget not found")
		}
		return nil, err
	}
	return &budget, nil
}

// ReplaceBudget swaps the whole category/item set and recomputes the totals
// inside one transaction. Any edit invalidates a prior decision, so the
// status is always forced back to pending_approval.
func ReplaceBudget(ctx context.Context, db *gorm.DB, id int, actorId int, actorRole UserRole, input *NewBudget) (*Budget, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var budget Budget
		if err := tx.Preload("Categories").Where("id = ?", id).Take(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Budget not found")
			}
			return err
		}

		isCreator := budget.UserId == actorId
		isAdmin := actorRole == UserRoleAdmin
		if !isAdmin && !isCreator {
			return utils.NewAuthorizationError("User not authorized to edit this budget.")
		}

		if len(budget.Categories) > 0 {
			categoryIds := make([]int, 0, len(budget.Categories))
			for _, category := range budget.Categories {
				categoryIds = append(categoryIds, category.ID)
			}
			if err := tx.Where("category_id IN ?", categoryIds).Delete(&Item{}).Error; err != nil {
				return err
			}
			if err := tx.Where("budget_id = ?", id).Delete(&Category{}).Error; err != nil {
				return err
			}
		}

		categories, total := ComputeBudgetTotals(input.Categories)
		for _, category := range categories {
			category.BudgetId = id
			if err := tx.Create(category).Error; err != nil {
				return err
			}
		}

		return tx.Model(&Budget{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":           input.Name,
			"program":        input.Program,
			"total_amount":   total,
			"status":         BudgetStatusPendingApproval,
			"status_comment": editAwaitingReapprovalComment,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return GetBudget(ctx, db, id)
}

// TransitionBudgetStatus applies a reviewer decision. Rejections and change
// requests must carry a comment; approval clears any prior comment. No
// source-state table applies: any status may move to any decision status.
func TransitionBudgetStatus(ctx context.Context, db *gorm.DB, id int, status BudgetStatus, comment string) (*Budget, error) {
	if !status.IsDecision() {
		return nil, utils.NewValidationError("Invalid status provided.")
	}
	if (status == BudgetStatusRejected || status == BudgetStatusChangesRequested) && strings.TrimSpace(comment) == "" {
		return nil, utils.NewValidationError("A comment is required for this action.")
	}

	var budget Budget
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Budget not found")
		}
		return nil, err
	}

	statusComment := comment
	if status == BudgetStatusApproved {
		statusComment = ""
	}
	err := db.WithContext(ctx).Model(&budget).Updates(map[string]interface{}{
		"status":         status,
		"status_comment": statusComment,
	}).Error
	if err != nil {
		return nil, err
	}

	budget.Status = status
	budget.StatusComment = statusComment
	return &budget, nil
}

// DeleteBudget removes the aggregate, items and categories included.
func DeleteBudget(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var budget Budget
		if err := tx.Preload("Categories").Where("id = ?", id).Take(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Budget not found")
			}
			return err
		}

		if len(budget.Categories) > 0 {
			categoryIds := make([]int, 0, len(budget.Categories))
			for _, category := range budget.Categories {
				categoryIds = append(categoryIds, category.ID)
			}
			if err := tx.Where("category_id IN ?", categoryIds).Delete(&Item{}).Error; err != nil {
				return err
			}
			if err := tx.Where("budget_id = ?", id).Delete(&Category{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&budget).Error
	})
}

type BudgetSummary struct {
	TotalApprovedAmount decimal.Decimal  `json:"totalApprovedAmount"`
	StatusCounts        map[string]int64 `json:"statusCounts"`
	TotalBudgets        int64            `json:"totalBudgets"`
}

// GetBudgetSummary feeds the dashboard cards: approved spend, counts per
// status and the overall budget count.
func GetBudgetSummary(ctx context.Context, db *gorm.DB) (*BudgetSummary, error) {
	summary := BudgetSummary{StatusCounts: map[string]int64{}}

	row := db.WithContext(ctx).Model(&Budget{}).
		Where("status = ?", BudgetStatusApproved).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&summary.TotalApprovedAmount); err != nil {
		return nil, err
	}

	var counts []struct {
		Status BudgetStatus
		Count  int64
	}
	err := db.WithContext(ctx).Model(&Budget{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		summary.StatusCounts[string(c.Status)] = c.Count
	}

	if err := db.WithContext(ctx).Model(&Budget{}).Count(&summary.TotalBudgets).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
