package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/recuerdos/tienda/internal/config"
	"go.uber.org/fx"
)

// API is the subset of the provider consumed by checkout and reconciliation:
// payment and merchant-order lookups plus preference creation.
type API interface {
	GetPayment(ctx context.Context, id string) (*Payment, error)
	GetMerchantOrder(ctx context.Context, id string) (*MerchantOrder, error)
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewClient(cfg config.Config) API {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     cfg.ProviderBaseURL,
		accessToken: cfg.ProviderAccessToken,
	}
}

// Module provides the provider API client.
var Module = fx.Module("payment.provider",
	fx.Provide(NewClient),
)

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.get(ctx, "/v1/payments/"+id, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) GetMerchantOrder(ctx context.Context, id string) (*MerchantOrder, error) {
	var mo MerchantOrder
	if err := c.get(ctx, "/merchant_orders/"+id, &mo); err != nil {
		return nil, err
	}
	return &mo, nil
}

func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError("create preference", resp)
	}

	var preference Preference
	if err := json.NewDecoder(resp.Body).Decode(&preference); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}
	return &preference, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrResourceNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response %s: %w", path, err)
	}
	return nil
}

func apiError(operation string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("provider %s: status %d: %s", operation, resp.StatusCode, string(snippet))
}
