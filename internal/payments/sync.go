package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// Action is the kind of catalog change mirrored to the payment processor
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
)

var ErrSyncNotConfigured = errors.New("payment sync URL not configured")

// SyncRequest is the body sent to the payment bridge function
type SyncRequest struct {
	ProductID        uuid.UUID `json:"product_id"`
	CreatorID        uuid.UUID `json:"creator_id"`
	PaymentAccountID string    `json:"payment_account_id"`
	Action           Action    `json:"action"`
	Name             string    `json:"name"`
	Price            int64     `json:"price"`
	Currency         string    `json:"currency"`
}

// NewSyncRequest describes a product change for a creator's payment account
func NewSyncRequest(action Action, p *domain.Product, c *domain.Creator, currency string) SyncRequest {
	return SyncRequest{
		ProductID:        p.ID,
		CreatorID:        c.ID,
		PaymentAccountID: c.PaymentAccountID,
		Action:           action,
		Name:             p.Name,
		Price:            p.EffectivePrice(),
		Currency:         currency,
	}
}

// Syncer mirrors one catalog change to the payment processor
type Syncer interface {
	Sync(ctx context.Context, req SyncRequest) error
}

// SyncError is a non-2xx answer from the payment bridge
type SyncError struct {
	StatusCode int
	Body       string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("payment sync failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPSyncer posts sync requests to a serverless function with a bearer secret
type HTTPSyncer struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTPSyncer(url, secret string, timeout time.Duration) *HTTPSyncer {
	return &HTTPSyncer{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSyncer) Sync(ctx context.Context, req SyncRequest) error {
	if s.url == "" {
		return ErrSyncNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode sync request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.secret)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call payment sync: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &SyncError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	return nil
}
