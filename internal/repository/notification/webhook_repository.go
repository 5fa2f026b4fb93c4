package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aiVisibility/domain"
	"aiVisibility/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

type WebhookConfig struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
}

// WebhookRepository posts lifecycle events to the external notification
// dispatcher, which fans them out to customer channels.
type WebhookRepository struct {
	webhookConfig WebhookConfig
	client        *http.Client
}

func NewWebhookRepository(cfg WebhookConfig) *WebhookRepository {
	return &WebhookRepository{
		webhookConfig: cfg,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

type eventEnvelope struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

func (r *WebhookRepository) NotifyModeTransition(ctx context.Context, ev domain.ModeTransitionEvent) error {
	return r.post(ctx, eventEnvelope{
		EventType: "mode_transition",
		Payload:   ev,
	})
}

func (r *WebhookRepository) NotifyCycleRefresh(ctx context.Context, ev domain.CycleRefreshEvent) error {
	return r.post(ctx, eventEnvelope{
		EventType: "cycle_refresh",
		Payload:   ev,
	})
}

// GenerateEliteCandidates asks the external catalog service, reached
// through the same dispatcher, to stage elite-category candidates for the
// account's next cycles.
func (r *WebhookRepository) GenerateEliteCandidates(ctx context.Context, accountID, scanID uint) error {
	return r.post(ctx, eventEnvelope{
		EventType: "elite_generation_requested",
		Payload: map[string]uint{
			"account_id": accountID,
			"scan_id":    scanID,
		},
	})
}

func (r *WebhookRepository) post(ctx context.Context, envelope eventEnvelope) error {
	if r.webhookConfig.BaseURL == "" {
		// No dispatcher configured; events are dropped silently in dev.
		logger.Debug("webhook dispatcher not configured, dropping event", "event_type", envelope.EventType)
		return nil
	}

	payloadByte, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal json payload: %w", err)
	}

	url := r.webhookConfig.BaseURL + "/v1/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadByte))
	if err != nil {
		return err
	}

	buildBasicAuth := goshortcute.StringtoBase64Encode(r.webhookConfig.BasicAuthUsername + ":" + r.webhookConfig.BasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+buildBasicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(res.Body)
	logger.Warn("webhook dispatcher response", "status", res.StatusCode, "body", string(bodyBytes))

	return fmt.Errorf("webhook dispatcher returned negative response %v", res.StatusCode)
}
