package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/poscore/internal/domain"
)

func TestSubmitOrder_Success(t *testing.T) {
	var gotIdempotencyKey, gotAuth string
	var gotOrder domain.LocalOrder

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotOrder))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"platform_order_id": "remote-1"})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL, "secret", time.Second)
	order := &domain.LocalOrder{ID: "o1", Total: 2158, Status: domain.OrderStatusPaid}

	platformID, err := adapter.SubmitOrder(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, "remote-1", platformID)
	assert.Equal(t, "o1", gotIdempotencyKey)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "o1", gotOrder.ID)
}

func TestSubmitOrder_RemoteRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "validation failed", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL, "", time.Second)
	_, err := adapter.SubmitOrder(context.Background(), &domain.LocalOrder{ID: "o1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "validation failed")
}

func TestSubmitOrder_MissingPlatformID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL, "", time.Second)
	_, err := adapter.SubmitOrder(context.Background(), &domain.LocalOrder{ID: "o1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing order id")
}

func TestSubmitOrder_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL, "", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := adapter.SubmitOrder(ctx, &domain.LocalOrder{ID: "o1"})
	assert.Error(t, err)
}
