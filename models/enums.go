package models

type UserRole string

const (
	UserRoleAdmin          UserRole = "admin"
	UserRoleProgramManager UserRole = "program_manager"
	UserRoleFinanceManager UserRole = "finance_manager"
	UserRoleViewer         UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleProgramManager, UserRoleFinanceManager, UserRoleViewer:
		return true
	}
	return false
}

type BudgetStatus string

const (
	BudgetStatusDraft            BudgetStatus = "draft"
	BudgetStatusPendingApproval  BudgetStatus = "pending_approval"
	BudgetStatusApproved         BudgetStatus = "approved"
	BudgetStatusRejected         BudgetStatus = "rejected"
	BudgetStatusChangesRequested BudgetStatus = "changes_requested"
)

// IsDecision reports whether the status is a reviewer decision. Only
// decision statuses are reachable through the status endpoint; draft and
// pending_approval are entry states.
func (s BudgetStatus) IsDecision() bool {
	switch s {
	case BudgetStatusApproved, BudgetStatusRejected, BudgetStatusChangesRequested:
		return true
	}
	return false
}

type SalaryStatus string

const (
	SalaryStatusPending SalaryStatus = "pending"
	SalaryStatusPaid    SalaryStatus = "paid"
)

type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)
