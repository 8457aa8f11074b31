package domain

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Event types after normalization. Anything else is acknowledged and ignored.
const (
	EventTypePayment       = "payment"
	EventTypeMerchantOrder = "merchant_order"
)

// Notification is one provider delivery after extraction, before any
// provider API call. ResourceID is empty when no id could be found.
type Notification struct {
	Type       string
	ResourceID string
	RawBody    []byte
}

type notificationBody struct {
	Type     string          `json:"type"`
	Action   string          `json:"action"`
	Topic    string          `json:"topic"`
	ID       json.RawMessage `json:"id"`
	Resource json.RawMessage `json:"resource"`
	Data     struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// ParseNotification normalizes the two delivery shapes the provider uses:
// a JSON body (type/action + data.id) and bare query parameters
// (topic + id, or a resource URL). Body fields win over query parameters.
func ParseNotification(rawBody []byte, query url.Values) Notification {
	n := Notification{RawBody: rawBody}

	var body notificationBody
	if len(rawBody) > 0 {
		_ = json.Unmarshal(rawBody, &body)
	}

	switch {
	case body.Type != "":
		n.Type = normalizeType(body.Type)
	case body.Action != "":
		n.Type = normalizeType(body.Action)
	case body.Topic != "":
		n.Type = normalizeType(body.Topic)
	case query.Get("type") != "":
		n.Type = normalizeType(query.Get("type"))
	case query.Get("topic") != "":
		n.Type = normalizeType(query.Get("topic"))
	}

	for _, candidate := range []string{
		rawID(body.Data.ID),
		rawID(body.ID),
		rawID(body.Resource),
		query.Get("data.id"),
		query.Get("id"),
		query.Get("resource"),
	} {
		if id := resourceID(candidate); id != "" {
			n.ResourceID = id
			break
		}
	}

	return n
}

// normalizeType reduces action strings like "payment.updated" to their
// resource prefix.
func normalizeType(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if idx := strings.IndexByte(value, '.'); idx > 0 {
		value = value[:idx]
	}
	return value
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

// resourceID extracts a usable id, taking the last path segment when the
// value is a resource URL.
func resourceID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.Contains(value, "/") {
		value = strings.TrimRight(value, "/")
		if idx := strings.LastIndexByte(value, '/'); idx >= 0 {
			value = value[idx+1:]
		}
	}
	return value
}
