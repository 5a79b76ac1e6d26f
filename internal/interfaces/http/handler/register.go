package handler

import (
	"time"

	appcashdrawer "github.com/erp/cashdrawer/internal/application/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/erp/cashdrawer/internal/interfaces/http/dto"
	"github.com/erp/cashdrawer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterHandler handles cash register endpoints
type RegisterHandler struct {
	BaseHandler
	service *appcashdrawer.RegisterService
}

// NewRegisterHandler creates a new RegisterHandler
func NewRegisterHandler(service *appcashdrawer.RegisterService) *RegisterHandler {
	return &RegisterHandler{service: service}
}

// RegisterRoutes registers register endpoints on the given group
func (h *RegisterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	registers := rg.Group("/registers")
	{
		registers.POST("", h.Open)
		registers.GET("", h.List)
		registers.GET("/:id", h.Get)
		registers.POST("/:id/close", h.Close)
		registers.POST("/:id/deposits", h.Deposit)
		registers.POST("/:id/withdrawals", h.Withdraw)
		registers.GET("/:id/transactions", h.ListTransactions)
		registers.GET("/:id/change-availability", h.ChangeAvailability)
	}
}

// OpenRegisterRequest is the payload for opening a register
type OpenRegisterRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Fund string `json:"fund" binding:"required"`
}

// DepositRequest is the payload for a petty-cash deposit
type DepositRequest struct {
	Counts      map[string]int64 `json:"counts" binding:"required"`
	Description string           `json:"description" binding:"max=500"`
}

// WithdrawRequest is the payload for a withdrawal
type WithdrawRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

// RegisterResponse is the wire shape of a register
type RegisterResponse struct {
	ID         uuid.UUID                       `json:"id"`
	Name       string                          `json:"name"`
	Fund       string                          `json:"fund"`
	Balance    string                          `json:"balance"`
	Breakdown  *valueobject.DenominationVector `json:"breakdown,omitempty"`
	ManagerID  uuid.UUID                       `json:"manager_id"`
	Status     cashdrawer.RegisterStatus       `json:"status"`
	Reconciled bool                            `json:"reconciled"`
	CreatedAt  time.Time                       `json:"created_at"`
	UpdatedAt  time.Time                       `json:"updated_at"`
}

func toRegisterResponse(register *cashdrawer.CashRegister) RegisterResponse {
	return RegisterResponse{
		ID:         register.ID,
		Name:       register.Name,
		Fund:       register.Fund.String(),
		Balance:    register.Balance.String(),
		Breakdown:  register.BillBreakdown,
		ManagerID:  register.ManagerID,
		Status:     register.Status,
		Reconciled: register.IsReconciled(),
		CreatedAt:  register.CreatedAt,
		UpdatedAt:  register.UpdatedAt,
	}
}

// TransactionResponse is the wire shape of a cash transaction
type TransactionResponse struct {
	ID          uuid.UUID                  `json:"id"`
	RegisterID  uuid.UUID                  `json:"register_id"`
	Type        cashdrawer.TransactionType `json:"type"`
	Amount      string                     `json:"amount"`
	Description string                     `json:"description,omitempty"`
	ActorID     uuid.UUID                  `json:"actor_id"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func toTransactionResponse(tx *cashdrawer.CashTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		RegisterID:  tx.RegisterID,
		Type:        tx.Type,
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		ActorID:     tx.ActorID,
		CreatedAt:   tx.CreatedAt,
	}
}

// Open handles POST /registers
func (h *RegisterHandler) Open(c *gin.Context) {
	actor, err := middleware.ActorFromContext(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fund, err := decimal.NewFromString(req.Fund)
	if err != nil {
		h.BadRequest(c, "fund must be a decimal amount")
		return
	}

	register, err := h.service.OpenRegister(c.Request.Context(), appcashdrawer.OpenRegisterInput{
		Name:      req.Name,
		Fund:      fund,
		ManagerID: actor.ID,
		Actor:     actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toRegisterResponse(register))
}

// Get handles GET /registers/:id
func (h *RegisterHandler) Get(c *gin.Context) {
	idReq, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	register, err := h.service.GetRegister(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRegisterResponse(register))
}

// List handles GET /registers
func (h *RegisterHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.ApplyDefaults()

	page, err := h.service.ListRegisters(c.Request.Context(), shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]RegisterResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toRegisterResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Close handles POST /registers/:id/close
func (h *RegisterHandler) Close(c *gin.Context) {
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

	if err := h.service.CloseRegister(c.Request.Context(), uuid.MustParse(idReq.ID), actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Deposit handles POST /registers/:id/deposits
func (h *RegisterHandler) Deposit(c *gin.Context) {
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

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.DepositPettyCash(c.Request.Context(), appcashdrawer.DepositInput{
		RegisterID:  uuid.MustParse(idReq.ID),
		Counts:      toDenominationCounts(req.Counts),
		Description: req.Description,
		Actor:       actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, gin.H{
		"transaction": toTransactionResponse(result.Transaction),
		"new_balance": result.NewBalance.String(),
		"breakdown":   result.Breakdown,
		"advisories":  result.Advisories,
	})
}

// Withdraw handles POST /registers/:id/withdrawals
func (h *RegisterHandler) Withdraw(c *gin.Context) {
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

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount must be a decimal amount")
		return
	}

	tx, err := h.service.Withdraw(c.Request.Context(), appcashdrawer.WithdrawInput{
		RegisterID:  uuid.MustParse(idReq.ID),
		Amount:      amount,
		Description: req.Description,
		Actor:       actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toTransactionResponse(tx))
}

// ListTransactions handles GET /registers/:id/transactions
func (h *RegisterHandler) ListTransactions(c *gin.Context) {
	idReq, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	var listReq struct {
		dto.ListRequest
		Type string `form:"type" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	}
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.ApplyDefaults()

	filter := cashdrawer.CashTransactionFilter{
		Filter: shared.Filter{
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if listReq.Type != "" {
		txType := cashdrawer.TransactionType(listReq.Type)
		filter.Type = &txType
	}

	page, err := h.service.ListTransactions(c.Request.Context(), uuid.MustParse(idReq.ID), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toTransactionResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// ChangeAvailability handles GET /registers/:id/change-availability
func (h *RegisterHandler) ChangeAvailability(c *gin.Context) {
	idReq, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	advisories, err := h.service.CheckChangeAvailability(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"advisories": advisories})
}

// toDenominationCounts converts wire counts keyed by code string. Unknown
// codes pass through so the domain validation reports them.
func toDenominationCounts(counts map[string]int64) map[valueobject.DenominationCode]int64 {
	out := make(map[valueobject.DenominationCode]int64, len(counts))
	for code, count := range counts {
		out[valueobject.DenominationCode(code)] = count
	}
	return out
}
