package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mbti-bot/internal/repository"
	"mbti-bot/internal/service"
)

// AssessmentHandler expone el flujo de diagnostico y las vistas de lectura.
type AssessmentHandler struct {
	logger      *zap.Logger
	assessments *service.AssessmentService
	reports     *service.ReportService
	store       repository.AssessmentStore
}

func NewAssessmentHandler(
	logger *zap.Logger,
	assessments *service.AssessmentService,
	reports *service.ReportService,
	store repository.AssessmentStore,
) *AssessmentHandler {
	return &AssessmentHandler{
		logger:      logger,
		assessments: assessments,
		reports:     reports,
		store:       store,
	}
}

// Start maneja POST /assessment/start.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req struct {
		UserID   string `json:"user_id" binding:"required"`
		Username string `json:"username"`
		Contact  string `json:"contact"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prompt, err := h.assessments.Start(req.UserID, req.Username, req.Contact)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user"})
			return
		}
		h.logger.Error("start assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start assessment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"prompt": prompt})
}

// Answer maneja POST /assessment/answer.
func (h *AssessmentHandler) Answer(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id" binding:"required"`
		SessionToken string `json:"session_token" binding:"required"`
		Choice       *int   `json:"choice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	outcome, err := h.assessments.Answer(c.Request.Context(), req.SessionToken, req.UserID, *req.Choice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSessionOwner):
			// Solo se informa al solicitante rechazado; la sesion del dueño
			// queda intacta.
			c.JSON(http.StatusForbidden, gin.H{"error": "this assessment belongs to another user"})
		case errors.Is(err, service.ErrInvalidChoice),
			errors.Is(err, service.ErrSessionComplete),
			errors.Is(err, service.ErrStaleStep),
			errors.Is(err, service.ErrSessionTokenInvalid),
			errors.Is(err, service.ErrSessionTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("answer failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record answer"})
		}
		return
	}

	if outcome.Prompt != nil {
		c.JSON(http.StatusOK, gin.H{"prompt": outcome.Prompt})
		return
	}

	report := h.reports.BuildReport(*outcome.Result, *outcome.Entry, outcome.Previous)
	delivered := h.reports.Deliver(c.Request.Context(), outcome.Contact, report)
	message := "Assessment complete! The full report was sent to you privately."
	if !delivered {
		message = "Assessment complete! The report could not be delivered privately."
	}
	c.JSON(http.StatusOK, gin.H{
		"result":    outcome.Result,
		"report":    report,
		"delivered": delivered,
		"message":   message,
	})
}

// CurrentResult maneja GET /assessment/result/:user_id.
func (h *AssessmentHandler) CurrentResult(c *gin.Context) {
	userID := c.Param("user_id")
	result, err := h.store.GetCurrentResult(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no previous result"})
			return
		}
		h.logger.Error("get current result failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// History maneja GET /assessment/history/:user_id.
func (h *AssessmentHandler) History(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	entries, err := h.store.ListHistory(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Trend maneja GET /assessment/trend/:user_id. Entrega los snapshots en orden
// cronologico para que el colaborador de render arme los graficos.
func (h *AssessmentHandler) Trend(c *gin.Context) {
	userID := c.Param("user_id")
	entries, err := h.store.ListTrend(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list trend failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load trend data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": entries})
}
