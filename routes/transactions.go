package routes

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listTransactions(c *gin.Context) {
	transactions, err := models.GetTransactions(c.Request.Context(), h.DB, c.Query("status"), c.Query("type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) createTransaction(c *gin.Context) {
	var input models.NewTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	claims := utils.GetClaimsFromContext(c.Request.Context())
	transaction, err := models.CreateTransaction(c.Request.Context(), h.DB, claims.ID, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *Handler) approveTransaction(c *gin.Context) {
	h.decideTransaction(c, models.TransactionStatusApproved)
}

func (h *Handler) rejectTransaction(c *gin.Context) {
	h.decideTransaction(c, models.TransactionStatusRejected)
}

func (h *Handler) decideTransaction(c *gin.Context, status models.TransactionStatus) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid transaction id.")
		return
	}

	claims := utils.GetClaimsFromContext(c.Request.Context())
	transaction, err := models.DecideTransaction(c.Request.Context(), h.DB, id, claims.ID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}
