package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
)

// CatalogClient reads services and professionals from the catalog API.
type CatalogClient struct {
	rest restClient
}

// NewCatalogClient creates a CatalogClient for the API rooted at baseURL.
func NewCatalogClient(baseURL, apiKey string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{rest: newRESTClient(baseURL, apiKey, timeout)}
}

var _ catalog.Provider = (*CatalogClient)(nil)

// ListServices returns the services matching q.
func (c *CatalogClient) ListServices(ctx context.Context, q catalog.Query) ([]catalog.Service, error) {
	var out []catalog.Service
	if err := c.get(ctx, "/services"+encodeQuery(q, "category"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetService returns one service, or catalog.ErrNotFound.
func (c *CatalogClient) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	var out catalog.Service
	if err := c.get(ctx, "/services/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProfessionals returns the professionals matching q. Query.Category
// filters by specialty.
func (c *CatalogClient) ListProfessionals(ctx context.Context, q catalog.Query) ([]catalog.Professional, error) {
	var out []catalog.Professional
	if err := c.get(ctx, "/professionals"+encodeQuery(q, "specialty"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfessional returns one professional, or catalog.ErrNotFound.
func (c *CatalogClient) GetProfessional(ctx context.Context, id string) (*catalog.Professional, error) {
	var out catalog.Professional
	if err := c.get(ctx, "/professionals/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) get(ctx context.Context, path string, out any) error {
	resp, err := c.rest.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("catalog: %s returned status=%d: %s", path, resp.StatusCode, readErrorMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

func encodeQuery(q catalog.Query, categoryParam string) string {
	values := url.Values{}
	if q.Text != "" {
		values.Set("q", q.Text)
	}
	if q.Category != "" {
		values.Set(categoryParam, q.Category)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
