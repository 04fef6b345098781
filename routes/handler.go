package routes

import (
	"bitbucket.org/mmdatafocus/finman_backend/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler carries the explicit dependencies for every REST handler: the
// database handle, logger, mailer and (optional) redis client are
// constructed in main and injected here.
type Handler struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Mailer *config.Mailer
	Redis  *redis.Client
}

// Register mounts the REST surface under /api.
func Register(r *gin.Engine, h *Handler) {
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.Authenticated(), h.logout)
	auth.POST("/forgot-password", h.forgotPassword)
	auth.PUT("/reset-password/:token", h.resetPassword)
	auth.GET("/verify-email/:token", h.verifyEmail)
	auth.PUT("/change-password", h.Authenticated(), h.changePassword)

	budgets := api.Group("/budgets")
	budgets.GET("/summary", h.Authenticated(), h.budgetSummary)
	budgets.GET("", h.Authenticated(), h.listBudgets)
	budgets.POST("", h.Authorize(OpBudgetCreate), h.createBudget)
	budgets.GET("/:id", h.Authenticated(), h.getBudget)
	budgets.PUT("/:id", h.Authorize(OpBudgetEdit), h.replaceBudget)
	budgets.PATCH("/:id/status", h.Authorize(OpBudgetTransition), h.transitionBudget)
	budgets.DELETE("/:id", h.Authorize(OpBudgetDelete), h.deleteBudget)

	salaries := api.Group("/salaries", h.Authorize(OpPayrollManage))
	salaries.GET("/summary", h.salarySummary)
	salaries.GET("", h.listSalaries)
	salaries.POST("", h.createSalary)
	salaries.PATCH("/:id/pay", h.paySalary)

	transactions := api.Group("/transactions", h.Authorize(OpLedgerManage))
	transactions.GET("", h.listTransactions)
	transactions.POST("", h.createTransaction)
	transactions.PATCH("/:id/approve", h.approveTransaction)
	transactions.PATCH("/:id/reject", h.rejectTransaction)

	users := api.Group("/users")
	users.PUT("/profile", h.Authenticated(), h.updateProfile)
	users.GET("", h.Authenticated(), h.listUsers)
	users.POST("", h.Authorize(OpUserManage), h.createUser)
	users.GET("/:id", h.Authorize(OpUserManage), h.getUser)
	users.PUT("/:id", h.Authorize(OpUserManage), h.updateUser)
	users.DELETE("/:id", h.Authorize(OpUserManage), h.deleteUser)

	reports := api.Group("/reports")
	reports.GET("/export", h.Authorize(OpReportExport), h.exportReport)
}
