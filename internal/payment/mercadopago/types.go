package mercadopago

import (
	"errors"
	"time"
)

var ErrResourceNotFound = errors.New("provider_resource_not_found")

// Payment is the authoritative payment object fetched from the provider.
// The webhook body's status field is advisory only and never used directly.
type Payment struct {
	ID                int64          `json:"id"`
	Status            string         `json:"status"`
	StatusDetail      string         `json:"status_detail"`
	ExternalReference string         `json:"external_reference"`
	DateApproved      *time.Time     `json:"date_approved"`
	DateCreated       *time.Time     `json:"date_created"`
	TransactionAmount float64        `json:"transaction_amount"`
	CurrencyID        string         `json:"currency_id"`
	Payer             Payer          `json:"payer"`
	FeeDetails        []Fee          `json:"fee_details"`
	Metadata          map[string]any `json:"metadata"`
}

type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Fee struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// MerchantOrder groups the payments attempted against one preference.
type MerchantOrder struct {
	ID           int64                  `json:"id"`
	PreferenceID string                 `json:"preference_id"`
	Payments     []MerchantOrderPayment `json:"payments"`
}

type MerchantOrderPayment struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type PreferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	Items             []PreferenceItem `json:"items"`
	Payer             *PreferencePayer `json:"payer,omitempty"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}
