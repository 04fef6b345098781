package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/middlewares"
	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Budget{}, &models.Category{}, &models.Item{},
		&models.Salary{}, &models.Transaction{},
	))

	logger := config.GetLogger()
	r := gin.New()
	r.Use(middlewares.Auth(nil))
	Register(r, &Handler{
		DB:     db,
		Logger: logger,
		Mailer: config.NewMailer(logger),
	})
	return r, db
}

func tokenFor(t *testing.T, db *gorm.DB, name string, role models.UserRole) string {
	t.Helper()

	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		Name:            name,
		Email:           name + "@example.com",
		Password:        string(hashed),
		Role:            role,
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)

	token, err := utils.JwtGenerate(user.ID, user.Name, string(user.Role), false)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func budgetBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":    name,
		"program": "Education",
		"categories": []map[string]interface{}{
			{
				"name": "Logistics",
				"items": []map[string]interface{}{
					{"name": "Travel", "quantity": 2, "unitPrice": 100, "period": "monthly"},
				},
			},
		},
	}
}

func TestBudgetRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/budgets", "", budgetBody("B"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/budgets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerCannotCreateBudget(t *testing.T) {
	r, db := newTestRouter(t)
	viewer := tokenFor(t, db, "viewer", models.UserRoleViewer)

	w := doJSON(r, http.MethodPost, "/api/budgets", viewer, budgetBody("B"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Viewers may still read.
	w = doJSON(r, http.MethodGet, "/api/budgets", viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFinanceManagerCreatesBudget(t *testing.T) {
	r, db := newTestRouter(t)
	finance := tokenFor(t, db, "finance", models.UserRoleFinanceManager)

	w := doJSON(r, http.MethodPost, "/api/budgets", finance, budgetBody("Q1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Q1", resp["name"])
	assert.Equal(t, "pending_approval", resp["status"])
	assert.Equal(t, "200", resp["totalAmount"])
}

func TestBudgetTransitionRoles(t *testing.T) {
	r, db := newTestRouter(t)
	finance := tokenFor(t, db, "finance", models.UserRoleFinanceManager)
	program := tokenFor(t, db, "program", models.UserRoleProgramManager)

	w := doJSON(r, http.MethodPost, "/api/budgets", finance, budgetBody("Q1"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/budgets/%v/status", created["id"])

	// The creator's role cannot decide; only program managers and admins.
	w = doJSON(r, http.MethodPatch, path, finance, map[string]interface{}{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Rejection without a comment is a validation error.
	w = doJSON(r, http.MethodPatch, path, program, map[string]interface{}{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "A comment is required for this action.")

	w = doJSON(r, http.MethodPatch, path, program, map[string]interface{}{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var decided map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decided))
	assert.Equal(t, "approved", decided["status"])
}

func TestOnlyAdminDeletesBudgets(t *testing.T) {
	r, db := newTestRouter(t)
	finance := tokenFor(t, db, "finance", models.UserRoleFinanceManager)
	admin := tokenFor(t, db, "admin", models.UserRoleAdmin)

	w := doJSON(r, http.MethodPost, "/api/budgets", finance, budgetBody("Q1"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/budgets/%v", created["id"])

	w = doJSON(r, http.MethodDelete, path, finance, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgramManagerCannotManagePayrollOrLedger(t *testing.T) {
	r, db := newTestRouter(t)
	program := tokenFor(t, db, "program", models.UserRoleProgramManager)

	w := doJSON(r, http.MethodGet, "/api/salaries", program, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/transactions", program, map[string]interface{}{
		"description": "x", "amount": 10, "type": "expense",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/reports/export", program, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOnlyAdminManagesUsers(t *testing.T) {
	r, db := newTestRouter(t)
	finance := tokenFor(t, db, "finance", models.UserRoleFinanceManager)
	admin := tokenFor(t, db, "admin", models.UserRoleAdmin)

	body := map[string]interface{}{"name": "Staff", "email": "staff@example.com", "role": "viewer"}

	w := doJSON(r, http.MethodPost, "/api/users", finance, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/users", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["mustChangePassword"])
	// Password material never leaves the API.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSalaryLifecycleOverHTTP(t *testing.T) {
	r, db := newTestRouter(t)
	finance := tokenFor(t, db, "finance", models.UserRoleFinanceManager)

	emp := models.User{Name: "employee", Email: "employee@example.com", Password: "x", Role: models.UserRoleViewer, IsEmailVerified: true}
	require.NoError(t, db.Create(&emp).Error)

	w := doJSON(r, http.MethodPost, "/api/salaries", finance, map[string]interface{}{
		"employeeId": emp.ID, "amount": 1000, "period": "2026-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/salaries/%v/pay", created["id"])

	w = doJSON(r, http.MethodPatch, path, finance, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPatch, path, finance, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already marked as paid")
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
