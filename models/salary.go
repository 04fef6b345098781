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

// Salary is a per-employee, per-period payroll entry. It stays pending until
// the pay transition marks it paid; paying is one-way.
type Salary struct {
	ID         int             `gorm:"primary_key" json:"id"`
	EmployeeId int             `gorm:"index;not null" json:"employeeId"`
	Employee   *User           `gorm:"foreignKey:EmployeeId" json:"employee,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	NetAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"netAmount"`
	Status     SalaryStatus    `gorm:"size:20;not null;default:pending" json:"status"`
	Period     string          `gorm:"size:20;not null" json:"period"`
	PaidAt     *time.Time      `json:"paidAt"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewSalary struct {
	EmployeeId int                  `json:"employeeId"`
	Amount     utils.LenientDecimal `json:"amount"`
	NetAmount  utils.LenientDecimal `json:"netAmount"`
	Period     string               `json:"period"`
}

func CreateSalary(ctx context.Context, db *gorm.DB, input *NewSalary) (*Salary, error) {
	if input == nil || input.EmployeeId <= 0 || input.Amount.IsZero() || strings.TrimSpace(input.Period) == "" {
		return nil, utils.NewValidationError("employeeId, amount, and period are required.")
	}

	var employee User
	if err := db.WithContext(ctx).Where("id = ?", input.EmployeeId).Take(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Employee not found.")
		}
		return nil, err
	}

	netAmount := input.NetAmount.Decimal
	if netAmount.IsZero() {
		netAmount = input.Amount.Decimal
	}

	salary := Salary{
		EmployeeId: input.EmployeeId,
		Amount:     input.Amount.Decimal,
		NetAmount:  netAmount,
		Period:     input.Period,
		Status:     SalaryStatusPending,
	}
	if err := db.WithContext(ctx).Create(&salary).Error; err != nil {
		return nil, err
	}
	salary.Employee = &employee
	return &salary, nil
}

// GetSalaries lists payroll entries, optionally filtered by status, period
// and employee.
func GetSalaries(ctx context.Context, db *gorm.DB, status string, period string, employeeId int) ([]*Salary, error) {
	var results []*Salary

	dbCtx := db.WithContext(ctx).Preload("Employee")
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if period != "" {
		dbCtx = dbCtx.Where("period = ?", period)
	}
	if employeeId > 0 {
		dbCtx = dbCtx.Where("employee_id = ?", employeeId)
	}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// PaySalary marks a pending record paid. The transition is one-way: an
// already-paid record cannot be paid again.
func PaySalary(ctx context.Context, db *gorm.DB, id int) (*Salary, error) {
	var salary Salary
	err := db.WithContext(ctx).Preload("Employee").Where("id = ?", id).Take(&salary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Salary record not found.")
		}
		return nil, err
	}
	if salary.Status == SalaryStatusPaid {
		return nil, utils.NewConflictError("Salary record is already marked as paid.")
	}

	now := time.Now()
	err = db.WithContext(ctx).Model(&salary).Updates(map[string]interface{}{
		"status":  SalaryStatusPaid,
		"paid_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	salary.Status = SalaryStatusPaid
	salary.PaidAt = &now
	return &salary, nil
}

type PaidEmployee struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date"`
}

type PendingEmployee struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Due    string          `json:"due"`
}

type SalarySummary struct {
	TotalSalaries    decimal.Decimal   `json:"totalSalaries"`
	NetSalaries      decimal.Decimal   `json:"netSalaries"`
	PendingSalaries  int64             `json:"pendingSalaries"`
	PaidSalaries     int64             `json:"paidSalaries"`
	TotalPaid        decimal.Decimal   `json:"totalPaid"`
	TotalPending     decimal.Decimal   `json:"totalPending"`
	EmployeesPaid    []PaidEmployee    `json:"employeesPaid"`
	EmployeesPending []PendingEmployee `json:"employeesPending"`
}

func GetSalarySummary(ctx context.Context, db *gorm.DB) (*SalarySummary, error) {
	var summary SalarySummary

	sumWhere := func(dest *decimal.Decimal, column string, status SalaryStatus) error {
		dbCtx := db.WithContext(ctx).Model(&Salary{}).Select("COALESCE(SUM(" + column + "), 0)")
		if status != "" {
			dbCtx = dbCtx.Where("status = ?", status)
		}
		return dbCtx.Row().Scan(dest)
	}

	if err := sumWhere(&summary.TotalSalaries, "amount", ""); err != nil {
		return nil, err
	}
	if err := sumWhere(&summary.NetSalaries, "net_amount", ""); err != nil {
		return nil, err
	}
	if err := sumWhere(&summary.TotalPaid, "amount", SalaryStatusPaid); err != nil {
		return nil, err
	}
	if err := sumWhere(&summary.TotalPending, "amount", SalaryStatusPending); err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(&Salary{}).Where("status = ?", SalaryStatusPending).Count(&summary.PendingSalaries).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Salary{}).Where("status = ?", SalaryStatusPaid).Count(&summary.PaidSalaries).Error; err != nil {
		return nil, err
	}

	var paid []*Salary
	if err := db.WithContext(ctx).Preload("Employee").Where("status = ?", SalaryStatusPaid).Find(&paid).Error; err != nil {
		return nil, err
	}
	for _, s := range paid {
		entry := PaidEmployee{Amount: s.Amount, Date: s.PaidAt}
		if s.Employee != nil {
			entry.Name = s.Employee.Name
		}
		summary.EmployeesPaid = append(summary.EmployeesPaid, entry)
	}

	var pending []*Salary
	if err := db.WithContext(ctx).Preload("Employee").Where("status = ?", SalaryStatusPending).Find(&pending).Error; err != nil {
		return nil, err
	}
	for _, s := range pending {
		entry := PendingEmployee{Amount: s.Amount, Due: s.Period}
		if s.Employee != nil {
			entry.Name = s.Employee.Name
		}
		summary.EmployeesPending = append(summary.EmployeesPending, entry)
	}

	return &summary, nil
}
