package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmlopes/processamento/internal/config"
	"github.com/dmlopes/processamento/internal/domain/models"
)

// Client posts processing summaries to an external webhook so downstream
// dashboards hear about consolidations without polling the store.
type Client interface {
	NotifyConsolidation(ctx context.Context, result *models.ProcessamentoResult) error
	NotifyBackfill(ctx context.Context, succeeded, failed int) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook notifier from configuration.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

type consolidationEvent struct {
	Event          string   `json:"evento"`
	DateKey        string   `json:"data"`
	KgTotal        float64  `json:"kgTotal"`
	Efficiency     float64  `json:"ctptd"`
	ShiftsIncluded []string `json:"turnosProcessados"`
}

type backfillEvent struct {
	Event     string `json:"evento"`
	Succeeded int    `json:"processadas"`
	Failed    int    `json:"falhas"`
}

// NotifyConsolidation reports a freshly consolidated date.
func (c *WebhookClient) NotifyConsolidation(ctx context.Context, result *models.ProcessamentoResult) error {
	return c.post(ctx, consolidationEvent{
		Event:          "processamento",
		DateKey:        result.DateKey,
		KgTotal:        result.ProducedTotalKg,
		Efficiency:     result.EfficiencyOverall,
		ShiftsIncluded: result.ShiftsIncluded,
	})
}

// NotifyBackfill reports the outcome of a backlog run.
func (c *WebhookClient) NotifyBackfill(ctx context.Context, succeeded, failed int) error {
	return c.post(ctx, backfillEvent{
		Event:     "backfill",
		Succeeded: succeeded,
		Failed:    failed,
	})
}

func (c *WebhookClient) post(ctx context.Context, payload any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook error: status=%d", resp.StatusCode())
	}
	return nil
}
