package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invaudit/internal/service"
)

// AuditHandler exposes the analysis pipeline over HTTP. Thin by contract:
// it collects input and renders output, all decisions live in the engine.
type AuditHandler struct {
	auditSvc *service.AuditService
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(auditSvc *service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// analyzeRequest is the request body for POST /api/v1/audits.
type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze handles POST /api/v1/audits.
func (h *AuditHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must contain a non-empty text field")
		return
	}

	report, err := h.auditSvc.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("handler.AuditHandler: [%v] analysis failed: %v", requestID, err)
		status, code, msg := MapAuditError(err)
		RespondError(c, status, code, msg)
		return
	}

	RespondOK(c, report)
}
