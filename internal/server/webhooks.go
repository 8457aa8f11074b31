package server

import (
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/recuerdos/tienda/internal/payment/domain"
)

const maxWebhookBody = 1 << 20

// HandlePaymentWebhook acknowledges every delivery with 200 so the provider
// stops retrying; ok reports whether the notification was applied.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	n := paymentdomain.ParseNotification(payload, c.Request.URL.Query())
	result := s.paymentSvc.Ingest(c.Request.Context(), n)

	c.JSON(http.StatusOK, gin.H{"ok": result.Ok})
}

func (s *Server) ResyncPayment(c *gin.Context) {
	var req paymentdomain.ResyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentSvc.Resync(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListWebhookEvents(c *gin.Context) {
	var req paymentdomain.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.paymentSvc.ListEvents(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListReconcileFailures(c *gin.Context) {
	var req paymentdomain.ListFailuresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	failures, err := s.paymentSvc.ListFailures(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"failures": failures})
}

func (s *Server) ReplayReconcileFailure(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidID)
		return
	}

	resp, err := s.paymentSvc.ReplayFailure(c.Request.Context(), id.Int64())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
