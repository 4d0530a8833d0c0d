package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/application/service"
	"github.com/spicon/registration/internal/domain/entity"
)

// RegisterRequest is the public registration form
type RegisterRequest struct {
	Region     string `json:"region" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	District   string `json:"district"`
	GroupType  string `json:"group_type" binding:"required"`
	SpouseName string `json:"spouse_name"`
	FamilySize int    `json:"family_size"`
	ArrivalDay string `json:"arrival_day"`

	TotalAmount   int64  `json:"total_amount"`
	AmountPaid    int64  `json:"amount_paid"`
	PaymentNote   string `json:"payment_note"`
	DateOfPayment string `json:"date_of_payment"` // RFC 3339 or YYYY-MM-DD
}

// Register handles POST /api/registrations
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	paidAt, err := parseDate(req.DateOfPayment)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid date_of_payment"})
		return
	}

	rec, err := h.services.Registration.Register(c.Request.Context(), service.RegisterInput{
		Region:        entity.Region(req.Region),
		Name:          req.Name,
		Email:         req.Email,
		Mobile:        req.Mobile,
		District:      req.District,
		GroupType:     req.GroupType,
		SpouseName:    req.SpouseName,
		FamilySize:    req.FamilySize,
		ArrivalDay:    req.ArrivalDay,
		TotalAmount:   req.TotalAmount,
		AmountPaid:    req.AmountPaid,
		PaymentNote:   req.PaymentNote,
		DateOfPayment: paidAt,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondCreated(c, rec)
}

// UploadScreenshot handles POST /api/registrations/:id/screenshot
func (h *Handlers) UploadScreenshot(c *gin.Context) {
	file, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "screenshot file is required"})
		return
	}

	storedPath, err := h.saveUpload(c.Request.Context(), file, "screenshots")
	if err != nil {
		h.respondError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.services.Registration.AttachScreenshot(c.Request.Context(), id, storedPath); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, gin.H{"path": storedPath})
}

// ListRegistrationsRequest represents query parameters for listing
type ListRegistrationsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ListRegistrations handles GET /api/registrations
func (h *Handlers) ListRegistrations(c *gin.Context) {
	var req ListRegistrationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	records, err := h.services.Registration.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, records)
}

// GetRegistration handles GET /api/registrations/:id
func (h *Handlers) GetRegistration(c *gin.Context) {
	rec, err := h.services.Registration.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, rec)
}

// UpdateRegistrationRequest carries editable fields; absent fields stay
// unchanged
type UpdateRegistrationRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Mobile      *string `json:"mobile"`
	District    *string `json:"district"`
	GroupType   *string `json:"group_type"`
	TotalAmount *int64  `json:"total_amount"`
}

// UpdateRegistration handles PUT /api/registrations/:id
func (h *Handlers) UpdateRegistration(c *gin.Context) {
	var req UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	rec, err := h.services.Registration.UpdateDetails(c.Request.Context(), c.Param("id"), service.UpdateDetailsInput{
		Name:        req.Name,
		Email:       req.Email,
		Mobile:      req.Mobile,
		District:    req.District,
		GroupType:   req.GroupType,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, rec)
}

// DeleteRegistration handles DELETE /api/registrations/:id
func (h *Handlers) DeleteRegistration(c *gin.Context) {
	if err := h.services.Registration.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, gin.H{"deleted": true})
}

// AddTransactionRequest records one installment
type AddTransactionRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

// AddTransaction handles POST /api/registrations/:id/transactions
func (h *Handlers) AddTransaction(c *gin.Context) {
	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	rec, err := h.services.Registration.AddTransaction(c.Request.Context(), c.Param("id"), req.Amount, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, rec)
}

// ApproveRegistration handles POST /api/registrations/:id/approve
func (h *Handlers) ApproveRegistration(c *gin.Context) {
	claims := claimsFrom(c)

	rec, err := h.services.Registrar.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, rec)
}

// RejectRegistrationRequest carries the mandatory rejection reason
type RejectRegistrationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectRegistration handles POST /api/registrations/:id/reject
func (h *Handlers) RejectRegistration(c *gin.Context) {
	var req RejectRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "reason is required"})
		return
	}

	claims := claimsFrom(c)
	rec, err := h.services.Registrar.Reject(c.Request.Context(), c.Param("id"), req.Reason, claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, rec)
}

// ImportWorkbook handles POST /api/import
func (h *Handlers) ImportWorkbook(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "workbook file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.respondError(c, fmt.Errorf("open workbook: %w", err))
		return
	}
	defer src.Close()

	results, err := h.services.Import.Import(c.Request.Context(), src)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, results)
}

// parseDate accepts RFC 3339 timestamps or bare dates; empty means unset
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
