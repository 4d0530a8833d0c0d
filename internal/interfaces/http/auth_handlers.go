package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/application/service"
	"github.com/spicon/registration/internal/domain/entity"
)

// SignupRequest creates a committee account
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Region   string `json:"region"`
}

// Signup handles POST /api/auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.services.Auth.RegisterUser(c.Request.Context(), service.RegisterUserInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
		Region:   entity.Region(req.Region),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondCreated(c, result)
}

// LoginRequest carries credentials; role and region are optional filters
// for accounts sharing a username
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Region   string `json:"region"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "username and password are required"})
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Role:     entity.Role(req.Role),
		Region:   entity.Region(req.Region),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, result)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.services.Auth.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, users)
}

// CurrentUser handles GET /api/auth/me
func (h *Handlers) CurrentUser(c *gin.Context) {
	claims := claimsFrom(c)

	user, err := h.services.Auth.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, user)
}
