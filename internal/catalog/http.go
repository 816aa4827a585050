package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/pkg/httpclient"
)

const serviceName = "catalog"

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// offerEnvelope matches the {data: ...} envelope downstream services use.
type offerEnvelope struct {
	Data *domain.ComboOffer `json:"data"`
}

// HTTPCatalog fetches offers from a remote catalog service over HTTP. Used
// when another service owns the offer tables.
type HTTPCatalog struct {
	client  HTTPDoer
	baseURL string
}

// NewHTTPCatalog creates a catalog backed by a remote service. baseURL is the
// service root, e.g. "http://catalog:8080".
func NewHTTPCatalog(client HTTPDoer, baseURL string) *HTTPCatalog {
	return &HTTPCatalog{
		client:  client,
		baseURL: baseURL,
	}
}

// ActiveOffer fetches the active offer for the category from the remote
// service. A 404 means the category has no offer and returns (nil, nil).
func (c *HTTPCatalog) ActiveOffer(ctx context.Context, categoryID string) (*domain.ComboOffer, error) {
	endpoint := fmt.Sprintf("%s/api/v1/combo-offers/category/%s", c.baseURL, url.PathEscape(categoryID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}

	defer func() { _ = resp.Body.Close() }()

	var envelope offerEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return envelope.Data, nil
}
