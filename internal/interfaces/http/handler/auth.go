package handler

import (
	"time"

	"github.com/erp/cashdrawer/internal/domain/identity"
	"github.com/erp/cashdrawer/internal/infrastructure/auth"
	"github.com/erp/cashdrawer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles login and supervisor-code endpoints
type AuthHandler struct {
	BaseHandler
	users      identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users identity.UserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{users: users, jwtService: jwtService, logger: logger}
}

// RegisterPublicRoutes registers unauthenticated endpoints
func (h *AuthHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}

// RegisterRoutes registers authenticated endpoints on the given group
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/auth/supervisor-code", h.SetSupervisorCode)
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.InternalError(c, "Login failed")
		return
	}
	if user == nil || !user.IsActive() || !user.VerifyPassword(req.Password) {
		h.logger.Warn("login rejected", zap.String("username", req.Username))
		h.Unauthorized(c, "Invalid username or password")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		h.InternalError(c, "Could not issue token")
		return
	}

	h.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Role:      string(user.Role),
	})
}

// SetSupervisorCodeRequest is the payload for rotating a supervisor code
type SetSupervisorCodeRequest struct {
	Code string `json:"code" binding:"required,min=4,max=20"`
}

// SetSupervisorCode handles PUT /auth/supervisor-code. Managers rotate their
// own authorization code.
func (h *AuthHandler) SetSupervisorCode(c *gin.Context) {
	actor, err := middleware.ActorFromContext(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req SetSupervisorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), actor.ID)
	if err != nil {
		h.InternalError(c, "Could not load user")
		return
	}
	if user == nil {
		h.Unauthorized(c, "User not found")
		return
	}

	if err := user.SetSupervisorCode(req.Code); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.users.Save(c.Request.Context(), user); err != nil {
		h.InternalError(c, "Could not save supervisor code")
		return
	}

	h.logger.Info("supervisor code rotated", zap.String("user_id", user.ID.String()))
	h.NoContent(c)
}
