package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from a storefront (10MB)
const maxResponseSize = 10 * 1024 * 1024

// RESTAdapter implements StorefrontPlatform against the storefront order
// API. One adapter per configured platform; each maps to one sales channel.
type RESTAdapter struct {
	code           string
	salesChannelID int64
	baseURL        string
	apiKey         string
	httpClient     *http.Client
}

// NewRESTAdapter creates an adapter for one configured storefront
func NewRESTAdapter(cfg config.StorefrontPlatformConfig) *RESTAdapter {
	return &RESTAdapter{
		code:           cfg.Code,
		salesChannelID: cfg.SalesChannelID,
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Code identifies the storefront
func (a *RESTAdapter) Code() string {
	return a.code
}

// SalesChannelID is the local channel id for this storefront
func (a *RESTAdapter) SalesChannelID() int64 {
	return a.salesChannelID
}

// PullOrders returns one page of orders placed inside the request window
func (a *RESTAdapter) PullOrders(ctx context.Context, req *syncdomain.OrderPullRequest) (*syncdomain.OrderPullResponse, error) {
	query := url.Values{}
	query.Set("placed_from", req.StartTime.UTC().Format(time.RFC3339))
	query.Set("placed_to", req.EndTime.UTC().Format(time.RFC3339))
	query.Set("page", strconv.Itoa(req.PageNo))
	query.Set("page_size", strconv.Itoa(req.PageSize))

	body, err := a.doRequest(ctx, "/api/v1/orders?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp orderListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s returned malformed order list: %v",
			syncdomain.ErrSourceUnavailable, a.code, err)
	}

	result := &syncdomain.OrderPullResponse{
		HasMore:    resp.HasMore,
		NextPageNo: req.PageNo + 1,
	}
	for _, order := range resp.Orders {
		result.Orders = append(result.Orders, order.toRow(a.salesChannelID))
	}
	return result, nil
}

// doRequest performs a GET against the storefront API
func (a *RESTAdapter) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront %s: failed to create request: %w", a.code, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", syncdomain.ErrSourceUnavailable, a.code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("storefront %s: failed to read response: %w", a.code, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", syncdomain.ErrSourceUnavailable, a.code, resp.StatusCode)
	}
	return body, nil
}

// Ensure RESTAdapter implements the storefront port
var _ syncdomain.StorefrontPlatform = (*RESTAdapter)(nil)
