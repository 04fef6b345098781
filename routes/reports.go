package routes

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportReport streams a workbook with one sheet per ledger: budgets,
// salaries and transactions.
func (h *Handler) exportReport(c *gin.Context) {
	ctx := c.Request.Context()

	budgets, err := models.GetBudgets(ctx, h.DB)
	if err != nil {
		h.respondError(c, err)
		return
	}
	salaries, err := models.GetSalaries(ctx, h.DB, "", "", 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	transactions, err := models.GetTransactions(ctx, h.DB, "", "")
	if err != nil {
		h.respondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			config.LogError(h.Logger, "routes", "exportReport", "close workbook", nil, err)
		}
	}()

	writeSheet := func(sheet string, headers []string, rows [][]interface{}) error {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		for col, header := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return err
			}
		}
		for rowIdx, row := range rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}
			}
		}
		return nil
	}

	budgetRows := make([][]interface{}, 0, len(budgets))
	for _, b := range budgets {
		createdBy := ""
		if b.CreatedBy != nil {
			createdBy = b.CreatedBy.Name
		}
		budgetRows = append(budgetRows, []interface{}{
			b.ID, b.Name, b.Program, b.TotalAmount.String(), string(b.Status),
			b.StatusComment, createdBy, b.CreatedAt.Format(time.RFC3339),
		})
	}
	if err := writeSheet("Budgets",
		[]string{"ID", "Name", "Program", "Total Amount", "Status", "Comment", "Created By", "Created At"},
		budgetRows); err != nil {
		h.respondError(c, err)
		return
	}

	salaryRows := make([][]interface{}, 0, len(salaries))
	for _, s := range salaries {
		employee := ""
		if s.Employee != nil {
			employee = s.Employee.Name
		}
		paidAt := ""
		if s.PaidAt != nil {
			paidAt = s.PaidAt.Format(time.RFC3339)
		}
		salaryRows = append(salaryRows, []interface{}{
			s.ID, employee, s.Amount.String(), s.NetAmount.String(), string(s.Status), s.Period, paidAt,
		})
	}
	if err := writeSheet("Salaries",
		[]string{"ID", "Employee", "Amount", "Net Amount", "Status", "Period", "Paid At"},
		salaryRows); err != nil {
		h.respondError(c, err)
		return
	}

	transactionRows := make([][]interface{}, 0, len(transactions))
	for _, t := range transactions {
		createdBy := ""
		if t.CreatedBy != nil {
			createdBy = t.CreatedBy.Name
		}
		transactionRows = append(transactionRows, []interface{}{
			t.ID, t.Description, t.Amount.String(), string(t.Type), string(t.Status),
			createdBy, t.CreatedAt.Format(time.RFC3339),
		})
	}
	if err := writeSheet("Transactions",
		[]string{"ID", "Description", "Amount", "Type", "Status", "Created By", "Created At"},
		transactionRows); err != nil {
		h.respondError(c, err)
		return
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		h.respondError(c, err)
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("finance-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
