package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/recuerdos/tienda/internal/config"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"go.uber.org/fx"
)

// Generator renders printable documents for orders.
type Generator interface {
	OrderInvoice(ctx context.Context, order *orderdomain.Order) (io.Reader, error)
}

type generator struct {
	store *config.StoreSettingsHolder
}

func New(store *config.StoreSettingsHolder) Generator {
	return &generator{store: store}
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

func (g *generator) OrderInvoice(ctx context.Context, order *orderdomain.Order) (io.Reader, error) {
	if order.Invoice == nil {
		return nil, fmt.Errorf("order %d has no invoice", order.ID)
	}
	settings := g.store.Current()

	cfg := marotocfg.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, settings.StoreName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	issued := order.Invoice.CreatedAt
	if order.Invoice.IssuedAt != nil {
		issued = *order.Invoice.IssuedAt
	}
	m.AddRow(18,
		col.New(6).Add(
			text.New("Factura: "+order.Invoice.Number, props.Text{Top: 0}),
			text.New("Pedido: "+order.ExternalReference, props.Text{Top: 4}),
			text.New("Fecha: "+issued.Format(time.DateOnly), props.Text{Top: 8}),
		),
		col.New(6),
	)

	buyerName := ""
	if order.BuyerName != nil {
		buyerName = *order.BuyerName
	}
	buyerEmail := ""
	if order.BuyerEmail != nil {
		buyerEmail = *order.BuyerEmail
	}
	m.AddRow(22,
		col.New(6).Add(
			text.New("Cliente", props.Text{Style: fontstyle.Bold}),
			text.New(buyerName, props.Text{Top: 5}),
			text.New(buyerEmail, props.Text{Top: 9}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(6, "Producto", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Cant.", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Precio", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Importe", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for i := range order.Items {
		item := &order.Items[i]
		m.AddRow(12,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, cents(item.UnitPrice, order.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, cents(item.UnitPrice*int64(item.Quantity), order.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, cents(order.Invoice.Total, order.Currency), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func cents(amount int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(amount)/100)
}
