package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		query    url.Values
		wantType string
		wantID   string
	}{
		{
			name:     "json body with data id",
			body:     `{"type":"payment","data":{"id":"12345"}}`,
			wantType: "payment",
			wantID:   "12345",
		},
		{
			name:     "action instead of type",
			body:     `{"action":"payment.updated","data":{"id":12345}}`,
			wantType: "payment",
			wantID:   "12345",
		},
		{
			name:     "topic with numeric id",
			body:     `{"topic":"merchant_order","id":987}`,
			wantType: "merchant_order",
			wantID:   "987",
		},
		{
			name:     "resource url",
			body:     `{"topic":"merchant_order","resource":"https://api.example.com/merchant_orders/4444"}`,
			wantType: "merchant_order",
			wantID:   "4444",
		},
		{
			name:     "empty body falls back to query",
			query:    url.Values{"type": {"payment"}, "data.id": {"123"}},
			wantType: "payment",
			wantID:   "123",
		},
		{
			name:     "query topic and id",
			query:    url.Values{"topic": {"merchant_order"}, "id": {"777"}},
			wantType: "merchant_order",
			wantID:   "777",
		},
		{
			name:     "body wins over query",
			body:     `{"type":"payment","data":{"id":"111"}}`,
			query:    url.Values{"type": {"merchant_order"}, "id": {"222"}},
			wantType: "payment",
			wantID:   "111",
		},
		{
			name:     "unknown shape",
			body:     `{"hello":"world"}`,
			wantType: "",
			wantID:   "",
		},
		{
			name:     "malformed json with query fallback",
			body:     `{"type":`,
			query:    url.Values{"topic": {"payment"}, "id": {"9"}},
			wantType: "payment",
			wantID:   "9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query := tc.query
			if query == nil {
				query = url.Values{}
			}
			n := ParseNotification([]byte(tc.body), query)
			require.Equal(t, tc.wantType, n.Type)
			require.Equal(t, tc.wantID, n.ResourceID)
		})
	}
}
