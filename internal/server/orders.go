package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
)

func (s *Server) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	req := orderdomain.ListRequest{
		Status:  c.Query("status"),
		Channel: c.Query("channel"),
		Limit:   limit,
	}

	orders, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) SetOrderShipment(c *gin.Context) {
	var req orderdomain.SetShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.OrderID = c.Param("id")

	order, err := s.orderSvc.SetShipment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) SetOrderInvoice(c *gin.Context) {
	var req orderdomain.SetInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.OrderID = c.Param("id")

	order, err := s.orderSvc.SetInvoice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
