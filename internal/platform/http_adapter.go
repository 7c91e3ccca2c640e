package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tillworks/poscore/internal/domain"
)

// HTTPAdapter submits orders to a commerce platform over HTTP. The local
// order id travels as an Idempotency-Key header so the platform can
// de-duplicate repeated submissions of the same sale.
type HTTPAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPAdapter(baseURL, apiKey string, timeout time.Duration) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type submitOrderResponse struct {
	PlatformOrderID string `json:"platform_order_id"`
}

func (a *HTTPAdapter) SubmitOrder(ctx context.Context, order *domain.LocalOrder) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	url := a.baseURL + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", order.ID)
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit order %s: %w", order.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("submit order %s: platform returned %d: %s", order.ID, resp.StatusCode, snippet)
	}

	var parsed submitOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode platform response: %w", err)
	}
	if parsed.PlatformOrderID == "" {
		return "", fmt.Errorf("submit order %s: platform response missing order id", order.ID)
	}
	return parsed.PlatformOrderID, nil
}
