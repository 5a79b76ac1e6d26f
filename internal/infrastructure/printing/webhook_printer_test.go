package printing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleReceipt() cashdrawer.AuditReceipt {
	return cashdrawer.AuditReceipt{
		AuditID:      uuid.New(),
		RegisterID:   uuid.New(),
		RegisterName: "Caja Principal",
		Kind:         cashdrawer.AuditKindAudit,
		StartBalance: decimal.NewFromInt(1000),
		EndBalance:   decimal.NewFromInt(900),
		AuditedBy:    uuid.New(),
		AuthorizedBy: uuid.New(),
		AuditDate:    time.Now(),
	}
}

func TestWebhookReceiptPrinter_PostsReceipt(t *testing.T) {
	var received receiptPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	printer := NewWebhookReceiptPrinter(server.URL, time.Second, zap.NewNop())
	receipt := sampleReceipt()

	err := printer.Print(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, receipt.AuditID.String(), received.AuditID)
	assert.Equal(t, "Caja Principal", received.RegisterName)
	assert.Equal(t, "900", received.EndBalance)
}

func TestWebhookReceiptPrinter_ReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	printer := NewWebhookReceiptPrinter(server.URL, time.Second, zap.NewNop())

	err := printer.Print(context.Background(), sampleReceipt())
	assert.Error(t, err)
}

func TestWebhookReceiptPrinter_LogsWhenUnconfigured(t *testing.T) {
	printer := NewWebhookReceiptPrinter("", time.Second, zap.NewNop())

	err := printer.Print(context.Background(), sampleReceipt())
	assert.NoError(t, err)
}
