package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/recuerdos/tienda/internal/catalog/domain"
	pkgdb "github.com/recuerdos/tienda/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.UnitPrice < 0 {
		return nil, domain.ErrInvalidPrice
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		Slug:        slug.Make(name),
		Name:        name,
		Description: trimPtr(req.Description),
		UnitPrice:   req.UnitPrice,
		UnitCost:    req.UnitCost,
		Active:      active,
		ImageURL:    trimPtr(req.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(req.Slug))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.ImageURL != nil {
		item.ImageURL = trimPtr(req.ImageURL)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, productSlug string) (*domain.Response, error) {
	item, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(productSlug))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListRequest{
		Active: req.Active,
		Name:   strings.TrimSpace(req.Name),
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) AddSku(ctx context.Context, req domain.AddSkuRequest) (*domain.SkuResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	product, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(req.ProductSlug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	stock := req.Stock
	if stock < 0 {
		stock = 0
	}

	now := time.Now().UTC()
	sku := &domain.ProductSku{
		ID:        s.genID.Generate().Int64(),
		ProductID: product.ID,
		Code:      code,
		Name:      trimPtr(req.Name),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSku(ctx, s.db, sku); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}

	resp := toSkuResponse(sku)
	return &resp, nil
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		UnitCost:    p.UnitCost,
		Active:      p.Active,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Skus {
		resp.Skus = append(resp.Skus, toSkuResponse(&p.Skus[i]))
	}
	return resp
}

func toSkuResponse(sku *domain.ProductSku) domain.SkuResponse {
	return domain.SkuResponse{
		ID:    snowflake.ID(sku.ID).String(),
		Code:  sku.Code,
		Name:  sku.Name,
		Stock: sku.Stock,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
