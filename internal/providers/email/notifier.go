package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/recuerdos/tienda/internal/config"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier tells the store owner about reconciliation outcomes. The SMTP
// implementation is swapped for a no-op when SMTP_HOST is unset.
type Notifier interface {
	OrderApproved(ctx context.Context, order *orderdomain.Order) error
}

type smtpNotifier struct {
	cfg   config.Config
	store *config.StoreSettingsHolder
	log   *zap.Logger
}

type noopNotifier struct{}

func (noopNotifier) OrderApproved(context.Context, *orderdomain.Order) error { return nil }

type Params struct {
	fx.In

	Config config.Config
	Store  *config.StoreSettingsHolder
	Log    *zap.Logger
}

func New(p Params) Notifier {
	if p.Config.SMTPHost == "" || p.Config.OwnerEmail == "" {
		p.Log.Info("smtp not configured, owner notifications disabled")
		return noopNotifier{}
	}
	return &smtpNotifier{
		cfg:   p.Config,
		store: p.Store,
		log:   p.Log.Named("email.notifier"),
	}
}

var Module = fx.Module("providers.email",
	fx.Provide(New),
)

func (n *smtpNotifier) OrderApproved(ctx context.Context, order *orderdomain.Order) error {
	settings := n.store.Current()

	subject := fmt.Sprintf("%s: pago aprobado, pedido %s", settings.StoreName, order.ExternalReference)

	var body strings.Builder
	fmt.Fprintf(&body, "Pedido %s aprobado.\r\n\r\n", order.ExternalReference)
	for i := range order.Items {
		item := &order.Items[i]
		fmt.Fprintf(&body, "  %dx %s (%s %.2f)\r\n",
			item.Quantity, item.Name, order.Currency, float64(item.UnitPrice)/100)
	}
	fmt.Fprintf(&body, "\r\nTotal: %s %.2f\r\n", order.Currency, float64(order.Total)/100)
	if order.BuyerName != nil {
		fmt.Fprintf(&body, "Comprador: %s\r\n", *order.BuyerName)
	}
	if order.BuyerEmail != nil {
		fmt.Fprintf(&body, "Email: %s\r\n", *order.BuyerEmail)
	}

	return n.send(n.cfg.OwnerEmail, subject, body.String())
}

func (n *smtpNotifier) send(to, subject, body string) error {
	from := n.cfg.SMTPFrom
	if from == "" {
		from = n.cfg.SMTPUser
	}

	msg := strings.Builder{}
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := n.cfg.SMTPHost + ":" + n.cfg.SMTPPort
	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
