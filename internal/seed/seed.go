package seed

import (
	"context"
	"errors"

	cataldomain "github.com/recuerdos/tienda/internal/catalog/domain"
	"github.com/recuerdos/tienda/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module loads a small demo catalog on startup when SEED_DEMO_CATALOG is
// set. Existing products are left alone, so running it repeatedly is safe.
var Module = fx.Module("seed",
	fx.Invoke(Run),
)

type demoProduct struct {
	name        string
	description string
	unitPrice   int64
	unitCost    int64
	skus        []demoSku
}

type demoSku struct {
	code  string
	name  string
	stock int
}

var demoCatalog = []demoProduct{
	{
		name:        "Mate Imperial",
		description: "Mate de calabaza forrado en cuero, virola de alpaca.",
		unitPrice:   1850000,
		unitCost:    920000,
		skus: []demoSku{
			{code: "MATE-NEGRO", name: "Cuero negro", stock: 12},
			{code: "MATE-SUELA", name: "Cuero suela", stock: 8},
		},
	},
	{
		name:        "Llavero Obelisco",
		description: "Llavero de metal esmaltado.",
		unitPrice:   350000,
		unitCost:    110000,
		skus: []demoSku{
			{code: "LLAV-OB", stock: 50},
		},
	},
	{
		name:        "Remera Buenos Aires",
		description: "Remera de algodon estampada.",
		unitPrice:   1200000,
		unitCost:    540000,
		skus: []demoSku{
			{code: "REM-BA-S", name: "Talle S", stock: 10},
			{code: "REM-BA-M", name: "Talle M", stock: 15},
			{code: "REM-BA-L", name: "Talle L", stock: 10},
		},
	},
}

func Run(cfg config.Config, catalog cataldomain.Service, log *zap.Logger) error {
	if !cfg.SeedDemoCatalog {
		return nil
	}
	log = log.Named("seed")

	ctx := context.Background()
	for _, p := range demoCatalog {
		desc := p.description
		product, err := catalog.Create(ctx, cataldomain.CreateRequest{
			Name:        p.name,
			Description: &desc,
			UnitPrice:   p.unitPrice,
			UnitCost:    p.unitCost,
		})
		if errors.Is(err, cataldomain.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return err
		}

		for _, s := range p.skus {
			req := cataldomain.AddSkuRequest{
				ProductSlug: product.Slug,
				Code:        s.code,
				Stock:       s.stock,
			}
			if s.name != "" {
				name := s.name
				req.Name = &name
			}
			if _, err := catalog.AddSku(ctx, req); err != nil {
				return err
			}
		}
		log.Info("seeded product", zap.String("slug", product.Slug))
	}
	return nil
}
