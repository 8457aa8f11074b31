package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	saledomain "github.com/recuerdos/tienda/internal/sale/domain"
)

func (s *Server) ListSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	req := saledomain.ListRequest{
		Channel: c.Query("channel"),
		Limit:   limit,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.To = &t
	}

	sales, err := s.saleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (s *Server) CreatePhysicalSale(c *gin.Context) {
	var req saledomain.CreatePhysicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.saleSvc.CreatePhysical(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
