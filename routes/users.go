package routes

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func userId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid user id.")
		return 0, false
	}
	return id, true
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := models.GetUsers(c.Request.Context(), h.DB)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := userId(c)
	if !ok {
		return
	}

	user, err := models.GetUser(c.Request.Context(), h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	if err := validate.Var(input.Email, "required,email"); err != nil {
		badRequest(c, "Please provide valid name, email, and role.")
		return
	}

	user, err := models.CreateUser(c.Request.Context(), h.DB, h.Mailer, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := userId(c)
	if !ok {
		return
	}
	var input models.UserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}
	if input.Email != "" {
		if err := validate.Var(input.Email, "email"); err != nil {
			badRequest(c, "Please provide valid name, email, and role.")
			return
		}
	}

	user, err := models.UpdateUser(c.Request.Context(), h.DB, id, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userId(c)
	if !ok {
		return
	}

	if err := models.DeleteUser(c.Request.Context(), h.DB, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// updateProfile accepts a multipart form so the profile picture can ride
// along with the name/email fields. The image is resized and pushed to
// cloud storage before the user row is touched.
func (h *Handler) updateProfile(c *gin.Context) {
	claims := utils.GetClaimsFromContext(c.Request.Context())

	name := c.PostForm("name")
	email := c.PostForm("email")
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			badRequest(c, "Please provide a valid email.")
			return
		}
	}

	pictureUrl := ""
	if file, err := c.FormFile("profilePicture"); err == nil && file != nil {
		url, err := utils.UploadProfileImage(c.Request.Context(), claims.ID, file)
		if err != nil {
			h.respondError(c, err)
			return
		}
		pictureUrl = url
	}

	user, err := models.UpdateProfile(c.Request.Context(), h.DB, claims.ID, name, email, pictureUrl)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
