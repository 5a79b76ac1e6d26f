// Package notification pushes post-audit notifications to an external channel
// webhook (chat bot, back office dashboard). Delivery is best effort.
package notification

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

// WebhookNotifier implements cashdrawer.Notifier over HTTP.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

var _ cashdrawer.Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type auditNotification struct {
	Event        string `json:"event"`
	AuditID      string `json:"audit_id"`
	RegisterID   string `json:"register_id"`
	RegisterName string `json:"register_name"`
	Kind         string `json:"kind"`
	EndBalance   string `json:"end_balance"`
	AuditDate    string `json:"audit_date"`
}

func (n *WebhookNotifier) NotifyAuditCompleted(ctx context.Context, receipt cashdrawer.AuditReceipt) error {
	if n.url == "" {
		n.logger.Debug("audit notification skipped (no notify endpoint configured)",
			zap.String("audit_id", receipt.AuditID.String()))
		return nil
	}

	body, err := json.Marshal(auditNotification{
		Event:        "cash_audit.completed",
		AuditID:      receipt.AuditID.String(),
		RegisterID:   receipt.RegisterID.String(),
		RegisterName: receipt.RegisterName,
		Kind:         string(receipt.Kind),
		EndBalance:   receipt.EndBalance.String(),
		AuditDate:    receipt.AuditDate.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook returned status %d", resp.StatusCode)
	}
	return nil
}
