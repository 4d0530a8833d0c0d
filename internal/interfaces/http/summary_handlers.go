package http

import (
	"github.com/gin-gonic/gin"
)

// PaymentSummary handles GET /api/summary/payments
func (h *Handlers) PaymentSummary(c *gin.Context) {
	summary, err := h.services.Summary.PaymentSummary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, summary)
}

// ExpenseSummary handles GET /api/summary/expenses
func (h *Handlers) ExpenseSummary(c *gin.Context) {
	summary, err := h.services.Summary.ExpenseSummary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, summary)
}
