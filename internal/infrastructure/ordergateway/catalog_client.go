package ordergateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	cartapp "github.com/lateleria/storefront/internal/application/cart"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/domain/cart"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProductsPath is the public product endpoint, suffixed with a slug or id
const ProductsPath = "/api/v1/productos/"

// CatalogClient resolves purchasable products from a remote storefront
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

// NewCatalogClient creates a client reading products from baseURL
func NewCatalogClient(baseURL string, client *http.Client) (*CatalogClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid storefront url %q", baseURL)
	}
	if client == nil {
		client = &http.Client{
			Timeout:   catalogTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &CatalogClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}, nil
}

type productEnvelope struct {
	Success bool                       `json:"success"`
	Data    *catalogapp.ProductResponse `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FindPurchasable fetches an active product by slug or id
func (c *CatalogClient) FindPurchasable(ctx context.Context, idOrSlug string) (cart.Product, error) {
	endpoint := c.baseURL + ProductsPath + url.PathEscape(idOrSlug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cart.Product{}, fmt.Errorf("failed to build product request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return cart.Product{}, fmt.Errorf("failed to fetch product %s: %w", idOrSlug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return cart.Product{}, catalogapp.ErrProductNotFound
	}

	var env productEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return cart.Product{}, fmt.Errorf("failed to decode product %s: %w", idOrSlug, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success || env.Data == nil {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return cart.Product{}, fmt.Errorf("storefront returned %d for product %s: %s", resp.StatusCode, idOrSlug, msg)
	}
	return productFromResponse(env.Data), nil
}

func productFromResponse(p *catalogapp.ProductResponse) cart.Product {
	out := cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		Variants:  make([]cart.VariantOption, len(p.Variants)),
	}
	if len(p.Images) > 0 {
		first := slices.MinFunc(p.Images, func(a, b catalogapp.ProductImageResponse) int {
			return a.Order - b.Order
		})
		out.Image = &first.URL
	}
	for i, v := range p.Variants {
		out.Variants[i] = cart.VariantOption{Name: v.Name, Value: v.Value, Price: v.Price}
	}
	return out
}

var _ cartapp.ProductFinder = (*CatalogClient)(nil)
