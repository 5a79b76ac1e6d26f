// Package printing delivers reconciliation receipts to an external print
// service over HTTP. When no endpoint is configured the printer degrades to
// structured logging so that audits still leave a trace.
package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"go.uber.org/zap"
)

// WebhookReceiptPrinter posts audit receipts to a configured webhook.
type WebhookReceiptPrinter struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

var _ cashdrawer.ReceiptPrinter = (*WebhookReceiptPrinter)(nil)

func NewWebhookReceiptPrinter(url string, timeout time.Duration, logger *zap.Logger) *WebhookReceiptPrinter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookReceiptPrinter{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type receiptPayload struct {
	AuditID      string `json:"audit_id"`
	RegisterID   string `json:"register_id"`
	RegisterName string `json:"register_name"`
	Kind         string `json:"kind"`
	StartBalance string `json:"start_balance"`
	EndBalance   string `json:"end_balance"`
	AuditedBy    string `json:"audited_by"`
	AuthorizedBy string `json:"authorized_by"`
	AuditDate    string `json:"audit_date"`
}

func (p *WebhookReceiptPrinter) Print(ctx context.Context, receipt cashdrawer.AuditReceipt) error {
	if p.url == "" {
		p.logger.Info("receipt printed to log (no print endpoint configured)",
			zap.String("audit_id", receipt.AuditID.String()),
			zap.String("register", receipt.RegisterName),
			zap.String("kind", string(receipt.Kind)),
			zap.String("start_balance", receipt.StartBalance.String()),
			zap.String("end_balance", receipt.EndBalance.String()))
		return nil
	}

	payload := receiptPayload{
		AuditID:      receipt.AuditID.String(),
		RegisterID:   receipt.RegisterID.String(),
		RegisterName: receipt.RegisterName,
		Kind:         string(receipt.Kind),
		StartBalance: receipt.StartBalance.String(),
		EndBalance:   receipt.EndBalance.String(),
		AuditedBy:    receipt.AuditedBy.String(),
		AuthorizedBy: receipt.AuthorizedBy.String(),
		AuditDate:    receipt.AuditDate.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("print webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("print webhook returned status %d", resp.StatusCode)
	}

	p.logger.Debug("receipt delivered to print webhook",
		zap.String("audit_id", receipt.AuditID.String()))
	return nil
}
