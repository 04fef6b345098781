package routes

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var input models.NewRegistration
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	if err := models.RegisterUser(c.Request.Context(), h.DB, h.Mailer, &input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

func (h *Handler) login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	info, err := models.Login(c.Request.Context(), h.DB, input.Email, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// logout revokes the presented token in redis for the remainder of its
// lifetime so it cannot be replayed.
func (h *Handler) logout(c *gin.Context) {
	ctx := c.Request.Context()
	claims := utils.GetClaimsFromContext(ctx)
	token, ok := utils.GetTokenFromContext(ctx)

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ok && ttl > 0 {
		if err := config.RevokeToken(ctx, h.Redis, token, ttl); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out."})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	if err := models.ForgotPassword(c.Request.Context(), h.DB, h.Mailer, input.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If a user with that email exists, a password reset link has been sent.",
	})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	if err := models.ResetPassword(c.Request.Context(), h.DB, c.Param("token"), input.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successful"})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	if err := models.VerifyEmail(c.Request.Context(), h.DB, c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified successfully. You can now log in.",
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body.")
		return
	}

	claims := utils.GetClaimsFromContext(c.Request.Context())
	err := models.ChangePassword(c.Request.Context(), h.DB, claims.ID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully."})
}
