package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, slug string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	AddSku(ctx context.Context, req AddSkuRequest) (*SkuResponse, error)
}

type ListRequest struct {
	Active *bool
	Name   string
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UnitPrice   int64   `json:"unit_price"`
	UnitCost    int64   `json:"unit_cost"`
	Active      *bool   `json:"active"`
	ImageURL    *string `json:"image_url"`
}

type UpdateRequest struct {
	Slug        string  `json:"-"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	UnitPrice   *int64  `json:"unit_price"`
	UnitCost    *int64  `json:"unit_cost"`
	Active      *bool   `json:"active"`
	ImageURL    *string `json:"image_url"`
}

type AddSkuRequest struct {
	ProductSlug string  `json:"-"`
	Code        string  `json:"code"`
	Name        *string `json:"name"`
	Stock       int     `json:"stock"`
}

type Response struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	UnitPrice   int64         `json:"unit_price"`
	UnitCost    int64         `json:"unit_cost"`
	Active      bool          `json:"active"`
	ImageURL    *string       `json:"image_url,omitempty"`
	Skus        []SkuResponse `json:"skus,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type SkuResponse struct {
	ID    string  `json:"id"`
	Code  string  `json:"code"`
	Name  *string `json:"name,omitempty"`
	Stock int     `json:"stock"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidCode  = errors.New("invalid_code")
	ErrNotFound     = errors.New("not_found")
	ErrSlugTaken    = errors.New("slug_taken")
)
