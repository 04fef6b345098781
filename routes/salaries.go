package routes

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/finman_backend/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listSalaries(c *gin.Context) {
	employeeId, _ := strconv.Atoi(c.Query("employeeId"))
	salaries, err := models.GetSalaries(c.Request.Context(), h.DB, c.Query("status"), c.Query("period"), employeeId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salaries)
}

func (h *Handler) createSalary(c *gin.Context) {
	var input models.NewSalary
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	salary, err := models.CreateSalary(c.Request.Context(), h.DB, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salary)
}

func (h *Handler) paySalary(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid salary id.")
		return
	}

	salary, err := models.PaySalary(c.Request.Context(), h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salary)
}

func (h *Handler) salarySummary(c *gin.Context) {
	summary, err := models.GetSalarySummary(c.Request.Context(), h.DB)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
