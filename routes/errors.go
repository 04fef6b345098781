package routes

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// respondError maps an error from the model layer to exactly one JSON
// response. Unclassified errors are logged and surfaced as a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		validationErr     *utils.ValidationError
		authenticationErr *utils.AuthenticationError
		authorizationErr  *utils.AuthorizationError
		notFoundErr       *utils.NotFoundError
		conflictErr       *utils.ConflictError
		mysqlErr          *mysql.MySQLError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.As(err, &authenticationErr):
		c.JSON(http.StatusUnauthorized, gin.H{"message": authenticationErr.Message})
	case errors.As(err, &authorizationErr):
		c.JSON(http.StatusForbidden, gin.H{"message": authorizationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"message": conflictErr.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry:
		c.JSON(http.StatusConflict, gin.H{"message": "Duplicate entry."})
	default:
		config.LogError(h.Logger, "routes", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
