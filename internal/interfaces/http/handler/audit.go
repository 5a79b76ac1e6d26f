package handler

import (
	"context"
	"time"

	appcashdrawer "github.com/erp/cashdrawer/internal/application/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/interfaces/http/dto"
	"github.com/erp/cashdrawer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles reconciliation and handoff endpoints
type AuditHandler struct {
	BaseHandler
	service *appcashdrawer.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service *appcashdrawer.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// RegisterRoutes registers audit endpoints on the given group
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	registers := rg.Group("/registers/:id")
	{
		registers.POST("/audits", h.PerformAudit)
		registers.POST("/handoffs", h.PerformHandoff)
		registers.GET("/audits", h.ListAudits)
	}
}

// AuditRequest is the payload for an audit or handoff submission
type AuditRequest struct {
	SubmissionID   string           `json:"submission_id" binding:"required,max=100"`
	SupervisorCode string           `json:"supervisor_code" binding:"required"`
	Counts         map[string]int64 `json:"counts" binding:"required"`
}

// AuditRecordResponse is the wire shape of a committed audit record
type AuditRecordResponse struct {
	ID           uuid.UUID            `json:"id"`
	RegisterID   uuid.UUID            `json:"register_id"`
	ManagerID    uuid.UUID            `json:"manager_id"`
	UserID       uuid.UUID            `json:"user_id"`
	Kind         cashdrawer.AuditKind `json:"kind"`
	StartBalance string               `json:"start_balance"`
	EndBalance   string               `json:"end_balance"`
	AuditDate    time.Time            `json:"audit_date"`
}

func toAuditRecordResponse(audit *cashdrawer.CashAudit) AuditRecordResponse {
	return AuditRecordResponse{
		ID:           audit.ID,
		RegisterID:   audit.RegisterID,
		ManagerID:    audit.ManagerID,
		UserID:       audit.UserID,
		Kind:         audit.Kind,
		StartBalance: audit.StartBalance.String(),
		EndBalance:   audit.EndBalance.String(),
		AuditDate:    audit.AuditDate,
	}
}

// PerformAudit handles POST /registers/:id/audits
func (h *AuditHandler) PerformAudit(c *gin.Context) {
	h.perform(c, h.service.PerformAudit)
}

// PerformHandoff handles POST /registers/:id/handoffs
func (h *AuditHandler) PerformHandoff(c *gin.Context) {
	h.perform(c, h.service.PerformHandoff)
}

func (h *AuditHandler) perform(
	c *gin.Context,
	run func(ctx context.Context, input appcashdrawer.AuditInput) (*appcashdrawer.AuditResult, error),
) {
	actor, err := middleware.ActorFromContext(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	idReq, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := run(c.Request.Context(), appcashdrawer.AuditInput{
		RegisterID:     uuid.MustParse(idReq.ID),
		SubmissionID:   req.SubmissionID,
		SupervisorCode: req.SupervisorCode,
		Counts:         toDenominationCounts(req.Counts),
		Actor:          actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !result.Success {
		h.Error(c, dto.GetHTTPStatus(result.Code), result.Code, result.Message)
		return
	}

	h.Success(c, result)
}

// ListAudits handles GET /registers/:id/audits
func (h *AuditHandler) ListAudits(c *gin.Context) {
	idReq, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	var listReq struct {
		dto.ListRequest
		Kind string `form:"kind" binding:"omitempty,oneof=AUDIT HANDOFF"`
	}
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.ApplyDefaults()

	filter := cashdrawer.CashAuditFilter{
		Filter: shared.Filter{
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if listReq.Kind != "" {
		kind := cashdrawer.AuditKind(listReq.Kind)
		filter.Kind = &kind
	}

	page, err := h.service.ListAudits(c.Request.Context(), uuid.MustParse(idReq.ID), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]AuditRecordResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toAuditRecordResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}
