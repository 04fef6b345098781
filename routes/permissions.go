package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
)

type Operation string

const (
	OpBudgetCreate     Operation = "budget:create"
	OpBudgetEdit       Operation = "budget:edit"
	OpBudgetTransition Operation = "budget:transition"
	OpBudgetDelete     Operation = "budget:delete"
	OpPayrollManage    Operation = "payroll:manage"
	OpLedgerManage     Operation = "ledger:manage"
	OpUserManage       Operation = "user:manage"
	OpReportExport     Operation = "report:export"
)

// permissions is the single source of truth mapping each gated operation to
// the roles allowed to perform it. Ownership checks (creator-or-admin on
// budget edits) live in the model operations, not here.
var permissions = map[Operation][]models.UserRole{
	OpBudgetCreate:     {models.UserRoleFinanceManager, models.UserRoleAdmin},
	OpBudgetEdit:       {models.UserRoleFinanceManager, models.UserRoleAdmin},
	OpBudgetTransition: {models.UserRoleProgramManager, models.UserRoleAdmin},
	OpBudgetDelete:     {models.UserRoleAdmin},
	OpPayrollManage:    {models.UserRoleFinanceManager, models.UserRoleAdmin},
	OpLedgerManage:     {models.UserRoleFinanceManager, models.UserRoleAdmin},
	OpUserManage:       {models.UserRoleAdmin},
	OpReportExport:     {models.UserRoleFinanceManager, models.UserRoleAdmin},
}

// AllowedRoles exposes the permission table row for an operation.
func AllowedRoles(op Operation) []models.UserRole {
	return permissions[op]
}

// Authenticated requires a valid bearer token but no particular role.
func (h *Handler) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.GetClaimsFromContext(c.Request.Context()) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorize is the single role gate: it consults the permission table for
// the operation and rejects callers whose role is not listed.
func (h *Handler) Authorize(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := utils.GetClaimsFromContext(c.Request.Context())
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token."})
			c.Abort()
			return
		}
		for _, role := range permissions[op] {
			if models.UserRole(claims.Role) == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"message": "You do not have permission to perform this action."})
		c.Abort()
	}
}
