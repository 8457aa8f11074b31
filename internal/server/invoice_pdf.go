package server

import (
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
)

// OrderInvoicePDF streams the printable invoice for an order that has one.
func (s *Server) OrderInvoicePDF(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, orderdomain.ErrInvalidID)
		return
	}

	order, err := s.orderRepo.FindByID(c.Request.Context(), s.db, id.Int64())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order == nil {
		AbortWithError(c, orderdomain.ErrNotFound)
		return
	}
	if order.Invoice == nil {
		AbortWithError(c, orderdomain.ErrInvalidInvoice)
		return
	}

	doc, err := s.pdfGen.OrderInvoice(c.Request.Context(), order)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+order.Invoice.Number+`.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}
