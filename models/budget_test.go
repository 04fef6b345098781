package models

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type BudgetTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	creator *User
	admin   *User
	other   *User
}

func (s *BudgetTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newTestDB(s.T())
	s.creator = createTestUser(s.T(), s.db, "finance", UserRoleFinanceManager)
	s.admin = createTestUser(s.T(), s.db, "admin", UserRoleAdmin)
	s.other = createTestUser(s.T(), s.db, "other", UserRoleFinanceManager)
}

func TestBudgetTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetTestSuite))
}

func budgetInput(name string) *NewBudget {
	return &NewBudget{
		Name:    name,
		Program: "Education",
		Categories: []*NewCategory{
			{
				Name: "Logistics",
				Items: []*NewItem{
					{Name: "Travel", Quantity: lenient("2"), UnitPrice: lenient("100"), Period: "monthly"},
				},
			},
		},
	}
}

func (s *BudgetTestSuite) TestCreateBudget() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("Q1 Budget"))
	require.NoError(s.T(), err)

	assert.Equal(s.T(), BudgetStatusPendingApproval, budget.Status)
	assert.Equal(s.T(), "200", budget.TotalAmount.String())
	assert.Equal(s.T(), s.creator.ID, budget.UserId)

	stored, err := GetBudget(s.ctx, s.db, budget.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), stored.Categories, 1)
	require.Len(s.T(), stored.Categories[0].Items, 1)
	assert.Equal(s.T(), "200", stored.Categories[0].Items[0].TotalPrice.String())
	require.NotNil(s.T(), stored.CreatedBy)
	assert.Equal(s.T(), s.creator.Name, stored.CreatedBy.Name)
}

func (s *BudgetTestSuite) TestCreateBudgetValidation() {
	var validationErr *utils.ValidationError

	_, err := CreateBudget(s.ctx, s.db, s.creator.ID, &NewBudget{Name: "  ", Categories: []*NewCategory{}})
	require.ErrorAs(s.T(), err, &validationErr)

	_, err = CreateBudget(s.ctx, s.db, s.creator.ID, &NewBudget{Name: "No categories"})
	require.ErrorAs(s.T(), err, &validationErr)

	// An empty categories array is allowed; only a missing one is rejected.
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, &NewBudget{Name: "Empty", Categories: []*NewCategory{}})
	require.NoError(s.T(), err)
	assert.True(s.T(), budget.TotalAmount.IsZero())
}

func (s *BudgetTestSuite) TestGetBudgetNotFound() {
	var notFoundErr *utils.NotFoundError
	_, err := GetBudget(s.ctx, s.db, 9999)
	require.ErrorAs(s.T(), err, &notFoundErr)
}

func (s *BudgetTestSuite) TestReplaceBudgetResetsStatusAndRecomputes() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("Q1 Budget"))
	require.NoError(s.T(), err)

	_, err = TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusRejected, "Too expensive")
	require.NoError(s.T(), err)

	replacement := &NewBudget{
		Name:    "Q1 Budget v2",
		Program: "Education",
		Categories: []*NewCategory{
			{
				Name: "Training",
				Items: []*NewItem{
					{Name: "Venue", Quantity: lenient("1"), UnitPrice: lenient("500")},
				},
			},
		},
	}
	updated, err := ReplaceBudget(s.ctx, s.db, budget.ID, s.creator.ID, UserRoleFinanceManager, replacement)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Q1 Budget v2", updated.Name)
	assert.Equal(s.T(), BudgetStatusPendingApproval, updated.Status)
	assert.Equal(s.T(), "Edited - Awaiting re-approval.", updated.StatusComment)
	assert.Equal(s.T(), "500", updated.TotalAmount.String())
	require.Len(s.T(), updated.Categories, 1)
	assert.Equal(s.T(), "Training", updated.Categories[0].Name)

	// The old category/item rows must be gone, not orphaned.
	var categoryCount, itemCount int64
	require.NoError(s.T(), s.db.Model(&Category{}).Count(&categoryCount).Error)
	require.NoError(s.T(), s.db.Model(&Item{}).Count(&itemCount).Error)
	assert.EqualValues(s.T(), 1, categoryCount)
	assert.EqualValues(s.T(), 1, itemCount)
}

func (s *BudgetTestSuite) TestReplaceBudgetRequiresCreatorOrAdmin() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("Owned"))
	require.NoError(s.T(), err)

	var authorizationErr *utils.AuthorizationError
	_, err = ReplaceBudget(s.ctx, s.db, budget.ID, s.other.ID, UserRoleFinanceManager, budgetInput("Hijacked"))
	require.ErrorAs(s.T(), err, &authorizationErr)

	// Nothing changed.
	stored, err := GetBudget(s.ctx, s.db, budget.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Owned", stored.Name)

	// Admin may edit anyone's budget.
	updated, err := ReplaceBudget(s.ctx, s.db, budget.ID, s.admin.ID, UserRoleAdmin, budgetInput("Admin edit"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Admin edit", updated.Name)
}

func (s *BudgetTestSuite) TestTransitionRequiresDecisionStatus() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("B"))
	require.NoError(s.T(), err)

	var validationErr *utils.ValidationError
	for _, status := range []BudgetStatus{BudgetStatusDraft, BudgetStatusPendingApproval, "bogus"} {
		_, err := TransitionBudgetStatus(s.ctx, s.db, budget.ID, status, "")
		require.ErrorAs(s.T(), err, &validationErr, "status %q must be rejected", status)
	}
}

func (s *BudgetTestSuite) TestTransitionRequiresCommentOnRejection() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("B"))
	require.NoError(s.T(), err)

	var validationErr *utils.ValidationError
	_, err = TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusRejected, "   ")
	require.ErrorAs(s.T(), err, &validationErr)

	_, err = TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusChangesRequested, "")
	require.ErrorAs(s.T(), err, &validationErr)

	updated, err := TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusChangesRequested, "Split the travel line")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), BudgetStatusChangesRequested, updated.Status)
	assert.Equal(s.T(), "Split the travel line", updated.StatusComment)
}

func (s *BudgetTestSuite) TestApproveClearsComment() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("B"))
	require.NoError(s.T(), err)

	_, err = TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusChangesRequested, "Needs work")
	require.NoError(s.T(), err)

	updated, err := TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusApproved, "ignored")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), BudgetStatusApproved, updated.Status)
	assert.Empty(s.T(), updated.StatusComment)
}

func (s *BudgetTestSuite) TestDecisionStatusesMoveFreely() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("B"))
	require.NoError(s.T(), err)

	_, err = TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusApproved, "")
	require.NoError(s.T(), err)

	// A decided budget can be re-decided; there is no terminal state.
	updated, err := TransitionBudgetStatus(s.ctx, s.db, budget.ID, BudgetStatusRejected, "Reconsidered")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), BudgetStatusRejected, updated.Status)
}

func (s *BudgetTestSuite) TestDeleteBudgetCascades() {
	budget, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("B"))
	require.NoError(s.T(), err)

	require.NoError(s.T(), DeleteBudget(s.ctx, s.db, budget.ID))

	var notFoundErr *utils.NotFoundError
	_, err = GetBudget(s.ctx, s.db, budget.ID)
	require.ErrorAs(s.T(), err, &notFoundErr)

	var categoryCount, itemCount int64
	require.NoError(s.T(), s.db.Model(&Category{}).Count(&categoryCount).Error)
	require.NoError(s.T(), s.db.Model(&Item{}).Count(&itemCount).Error)
	assert.Zero(s.T(), categoryCount)
	assert.Zero(s.T(), itemCount)

	err = DeleteBudget(s.ctx, s.db, budget.ID)
	require.ErrorAs(s.T(), err, &notFoundErr)
}

func (s *BudgetTestSuite) TestBudgetSummary() {
	first, err := CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("First"))
	require.NoError(s.T(), err)
	_, err = CreateBudget(s.ctx, s.db, s.creator.ID, budgetInput("Second"))
	require.NoError(s.T(), err)

	_, err = TransitionBudgetStatus(s.ctx, s.db, first.ID, BudgetStatusApproved, "")
	require.NoError(s.T(), err)

	summary, err := GetBudgetSummary(s.ctx, s.db)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "200", summary.TotalApprovedAmount.String())
	assert.EqualValues(s.T(), 2, summary.TotalBudgets)
	assert.EqualValues(s.T(), 1, summary.StatusCounts["approved"])
	assert.EqualValues(s.T(), 1, summary.StatusCounts["pending_approval"])
}
