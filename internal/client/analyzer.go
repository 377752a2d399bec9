package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"market/analyzer/internal/config"
	"market/analyzer/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type AnalyzerClient interface {
	Import(ctx context.Context, req domain.ShopUnitImportRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Node(ctx context.Context, id uuid.UUID) (*domain.ShopUnit, error)
	Sales(ctx context.Context, date time.Time) ([]domain.ShopUnitStatisticUnit, error)
	Statistic(ctx context.Context, id uuid.UUID, start, end *time.Time) ([]domain.ShopUnitStatisticUnit, error)
}

type analyzerClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client
}

func NewAnalyzerClient(cfg config.ClientConfig) AnalyzerClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &analyzerClient{
		rl:         rl,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
	}
}

func (c *analyzerClient) Import(ctx context.Context, req domain.ShopUnitImportRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode import request: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, c.baseURL+"/imports", body)
	if err != nil {
		return err
	}

	log.Debugf("Imported %d units", len(req.Items))
	return nil
}

func (c *analyzerClient) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/delete/%s", c.baseURL, id), nil)
	return err
}

func (c *analyzerClient) Node(ctx context.Context, id uuid.UUID) (*domain.ShopUnit, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/nodes/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	var unit domain.ShopUnit
	if err := json.Unmarshal([]byte(body), &unit); err != nil {
		return nil, fmt.Errorf("failed to decode node %s: %w", id, err)
	}
	return &unit, nil
}

func (c *analyzerClient) Sales(ctx context.Context, date time.Time) ([]domain.ShopUnitStatisticUnit, error) {
	query := url.Values{"date": []string{date.UTC().Format(time.RFC3339Nano)}}
	return c.statisticItems(ctx, c.baseURL+"/sales?"+query.Encode())
}

func (c *analyzerClient) Statistic(ctx context.Context, id uuid.UUID, start, end *time.Time) ([]domain.ShopUnitStatisticUnit, error) {
	query := url.Values{}
	if start != nil {
		query.Set("dateStart", start.UTC().Format(time.RFC3339Nano))
	}
	if end != nil {
		query.Set("dateEnd", end.UTC().Format(time.RFC3339Nano))
	}

	u := fmt.Sprintf("%s/node/%s/statistic", c.baseURL, id)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.statisticItems(ctx, u)
}

func (c *analyzerClient) statisticItems(ctx context.Context, u string) ([]domain.ShopUnitStatisticUnit, error) {
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp domain.ShopUnitStatisticResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode statistic response: %w", err)
	}
	return resp.Items, nil
}

// do sends one request and maps API error codes back onto domain errors.
func (c *analyzerClient) do(ctx context.Context, method, u string, body []byte) (string, error) {
	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req = req.SetBody(body)
	}

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodPost:
		resp, err = req.Post(u)
	case http.MethodDelete:
		resp, err = req.Delete(u)
	default:
		resp, err = req.Get(u)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to %s %s: %w", method, u, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, u)
	case resp.StatusCode() == http.StatusBadRequest:
		return "", fmt.Errorf("%w: %s", domain.ErrValidationFailed, resp.String())
	case resp.IsError():
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}
