package routes

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
)

func budgetId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid budget id.")
		return 0, false
	}
	return id, true
}

func (h *Handler) listBudgets(c *gin.Context) {
	budgets, err := models.GetBudgets(c.Request.Context(), h.DB)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *Handler) getBudget(c *gin.Context) {
	id, ok := budgetId(c)
	if !ok {
		return
	}

	budget, err := models.GetBudget(c.Request.Context(), h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *Handler) createBudget(c *gin.Context) {
	var input models.NewBudget
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	claims := utils.GetClaimsFromContext(c.Request.Context())
	budget, err := models.CreateBudget(c.Request.Context(), h.DB, claims.ID, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, budget)
}

func (h *Handler) replaceBudget(c *gin.Context) {
	id, ok := budgetId(c)
	if !ok {
		return
	}
	var input models.NewBudget
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	claims := utils.GetClaimsFromContext(c.Request.Context())
	budget, err := models.ReplaceBudget(c.Request.Context(), h.DB, id, claims.ID, models.UserRole(claims.Role), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *Handler) transitionBudget(c *gin.Context) {
	id, ok := budgetId(c)
	if !ok {
		return
	}
	var input struct {
		Status  models.BudgetStatus `json:"status"`
		Comment string              `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	budget, err := models.TransitionBudgetStatus(c.Request.Context(), h.DB, id, input.Status, input.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *Handler) deleteBudget(c *gin.Context) {
	id, ok := budgetId(c)
	if !ok {
		return
	}

	if err := models.DeleteBudget(c.Request.Context(), h.DB, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully."})
}

func (h *Handler) budgetSummary(c *gin.Context) {
	summary, err := models.GetBudgetSummary(c.Request.Context(), h.DB)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
