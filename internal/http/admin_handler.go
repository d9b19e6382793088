package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mbti-bot/internal/service"
)

// AdminHandler expone login de administrador y el borrado de historial.
type AdminHandler struct {
	logger *zap.Logger
	admin  *service.AdminService
}

func NewAdminHandler(logger *zap.Logger, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{logger: logger, admin: admin}
}

// Login maneja POST /admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.admin.Authenticate(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access not configured"})
		case errors.Is(err, service.ErrAdminUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			h.logger.Error("admin login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// DeleteHistory maneja DELETE /admin/history/:user_id.
func (h *AdminHandler) DeleteHistory(c *gin.Context) {
	userID := c.Param("user_id")
	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a number"})
		return
	}

	deleted, err := h.admin.DeleteHistory(c.Request.Context(), userID, count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeleteCountInvalid), errors.Is(err, service.ErrInvalidUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("delete history failed", zap.Error(err), zap.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete history"})
		}
		return
	}

	h.logger.Info("history deleted by admin",
		zap.String("user_id", userID),
		zap.Int64("deleted", deleted),
	)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
