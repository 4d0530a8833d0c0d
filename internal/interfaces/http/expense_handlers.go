package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/application/service"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/auth"
)

// SubmitRequest handles POST /api/requests. The form is multipart so
// workers can attach bill images alongside the claim itself.
func (h *Handlers) SubmitRequest(c *gin.Context) {
	claims := claimsFrom(c)

	title := c.PostForm("title")
	description := c.PostForm("description")
	amount, err := strconv.ParseInt(c.PostForm("amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "amount must be a whole number"})
		return
	}

	images, err := h.saveUploads(c, "images", "requests")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.services.Expense.Submit(c.Request.Context(), service.SubmitExpenseInput{
		WorkerID:    claims.UserID,
		Region:      entity.Region(claims.Region),
		Title:       title,
		Amount:      amount,
		Description: description,
		Images:      images,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondCreated(c, req)
}

// ListRequests handles GET /api/requests. Roles without the approve
// permission only see their own claims.
func (h *Handlers) ListRequests(c *gin.Context) {
	claims := claimsFrom(c)

	var (
		requests []*entity.WorkerRequest
		err      error
	)
	if auth.HasPermission(entity.Role(claims.Role), auth.PermExpensesApprove) ||
		auth.HasPermission(entity.Role(claims.Role), auth.PermExpensesPay) {
		requests, err = h.services.Expense.ListAll(c.Request.Context())
	} else {
		requests, err = h.services.Expense.ListByWorker(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, requests)
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	req, err := h.services.Expense.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// ApproveRequest handles POST /api/requests/:id/approve
func (h *Handlers) ApproveRequest(c *gin.Context) {
	claims := claimsFrom(c)

	req, err := h.services.Expense.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// RejectRequestBody carries the rejection reason
type RejectRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectRequest handles POST /api/requests/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	var body RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "reason is required"})
		return
	}

	req, err := h.services.Expense.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// PayRequest handles POST /api/requests/:id/pay. Multipart so the cashier
// can attach transfer proof images.
func (h *Handlers) PayRequest(c *gin.Context) {
	claims := claimsFrom(c)

	images, err := h.saveUploads(c, "images", "payouts")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.services.Expense.Pay(c.Request.Context(), c.Param("id"), service.PayExpenseInput{
		PaidBy: claims.UserID,
		Note:   c.PostForm("note"),
		Images: images,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// ConfirmReceived handles POST /api/requests/:id/receive
func (h *Handlers) ConfirmReceived(c *gin.Context) {
	req, err := h.services.Expense.ConfirmReceived(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// AmountRequestBody carries an extra or return amount
type AmountRequestBody struct {
	Amount int64 `json:"amount" binding:"required"`
}

// RequestExtra handles POST /api/requests/:id/extra
func (h *Handlers) RequestExtra(c *gin.Context) {
	var body AmountRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "amount is required"})
		return
	}

	req, err := h.services.Expense.RequestExtra(c.Request.Context(), c.Param("id"), body.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// RequestReturn handles POST /api/requests/:id/return
func (h *Handlers) RequestReturn(c *gin.Context) {
	var body AmountRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "amount is required"})
		return
	}

	req, err := h.services.Expense.RequestReturn(c.Request.Context(), c.Param("id"), body.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, req)
}

// saveUploads stores every file under the given multipart field name and
// returns their stored paths
func (h *Handlers) saveUploads(c *gin.Context, field, subdir string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File[field]
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := h.saveUpload(c.Request.Context(), file, subdir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
