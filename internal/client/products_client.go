package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "markethub/internal/errors"
)

const defaultTimeout = 5 * time.Second

// ProductsClient calls the products service. It is used for the
// deactivation cascade only; callers treat every failure as best-effort.
type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProductsClient creates a client for the given base URL. The client
// imposes a timeout so an unresponsive collaborator cannot stall the
// triggering request.
func NewProductsClient(baseURL string) *ProductsClient {
	return &ProductsClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// DeactivateByUser asks the products service to mark all of the user's
// products unavailable. Transport errors, non-success statuses and missing
// configuration all map to ErrUpstreamUnavailable.
func (c *ProductsClient) DeactivateByUser(ctx context.Context, userID uint) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: products base URL not configured", apperrors.ErrUpstreamUnavailable)
	}

	url := fmt.Sprintf("%s/api/products/deactivate-by-user/%d", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}
