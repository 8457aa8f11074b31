package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cataldomain "github.com/recuerdos/tienda/internal/catalog/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	req := cataldomain.ListRequest{
		Name: strings.TrimSpace(c.Query("name")),
	}
	switch c.Query("active") {
	case "true":
		active := true
		req.Active = &active
	case "false":
		active := false
		req.Active = &active
	}

	products, err := s.catalogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.catalogSvc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req cataldomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req cataldomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Slug = c.Param("slug")

	product, err := s.catalogSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) AddProductSku(c *gin.Context) {
	var req cataldomain.AddSkuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ProductSlug = c.Param("slug")

	sku, err := s.catalogSvc.AddSku(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sku)
}
