package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/model"
)

// ProductsClient talks to the remote product service. All mutating calls
// carry the caller's bearer token; the backend treats unauthenticated
// mutation as a defect, deletes included.
type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductsClient(cfg config.Remote) *ProductsClient {
	return &ProductsClient{
		baseURL:    strings.TrimSuffix(cfg.ProductBaseURL, "/"),
		httpClient: newHTTPClient(cfg),
	}
}

// productDoc is the wire shape of the remote service, which keys records by
// a Mongo-style "_id".
type productDoc struct {
	ID               string         `json:"_id"`
	Name             string         `json:"name"`
	Price            float64        `json:"price"`
	Description      string         `json:"description"`
	Category         model.Category `json:"category"`
	Image            string         `json:"image"`
	AdditionalImages []string       `json:"additionalImages"`
	Rating           float64        `json:"rating"`
	Quantity         int            `json:"quantity"`
	Discount         float64        `json:"discount"`
	Stocks           int            `json:"stocks"`
	Features         []string       `json:"features"`
}

func (d productDoc) toModel() model.Product {
	return model.Product{
		ID:               d.ID,
		Name:             d.Name,
		Price:            d.Price,
		Description:      d.Description,
		Category:         d.Category,
		Image:            d.Image,
		AdditionalImages: d.AdditionalImages,
		Rating:           d.Rating,
		Quantity:         d.Quantity,
		Discount:         d.Discount,
		Stocks:           d.Stocks,
		Features:         d.Features,
	}.Normalized()
}

func docFromModel(p model.Product) productDoc {
	p = p.Normalized()
	return productDoc{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		Description:      p.Description,
		Category:         p.Category,
		Image:            p.Image,
		AdditionalImages: p.AdditionalImages,
		Rating:           p.Rating,
		Quantity:         p.Quantity,
		Discount:         p.Discount,
		Stocks:           p.Stocks,
		Features:         p.Features,
	}
}

func (c *ProductsClient) List(ctx context.Context) ([]model.Product, error) {
	return c.list(ctx, c.baseURL+"/api/products")
}

func (c *ProductsClient) ListByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	return c.list(ctx, c.baseURL+"/api/products/category/"+url.PathEscape(string(category)))
}

func (c *ProductsClient) list(ctx context.Context, endpoint string) ([]model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseErr(resp)
	}

	var docs []productDoc
	if err := decodeJSON(resp, &docs); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}

	return products, nil
}

func (c *ProductsClient) Get(ctx context.Context, id string) (model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Product{}, transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Product{}, responseErr(resp)
	}

	var doc productDoc
	if err := decodeJSON(resp, &doc); err != nil {
		return model.Product{}, err
	}

	return doc.toModel(), nil
}

// Create posts a draft and returns the record the server persisted,
// identifier included.
func (c *ProductsClient) Create(ctx context.Context, product model.Product, token string) (model.Product, error) {
	return c.submit(ctx, http.MethodPost, c.baseURL+"/api/products", product, token, http.StatusCreated, http.StatusOK)
}

// Update puts the full record and returns the server echo.
func (c *ProductsClient) Update(ctx context.Context, id string, product model.Product, token string) (model.Product, error) {
	return c.submit(ctx, http.MethodPut, c.baseURL+"/api/products/"+url.PathEscape(id), product, token, http.StatusOK)
}

func (c *ProductsClient) submit(ctx context.Context, method, endpoint string, product model.Product, token string, okStatuses ...int) (model.Product, error) {
	payload, err := json.Marshal(docFromModel(product))
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.Product{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Product{}, transportErr(err)
	}
	defer resp.Body.Close()

	ok := false
	for _, status := range okStatuses {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		return model.Product{}, responseErr(resp)
	}

	var doc productDoc
	if err := decodeJSON(resp, &doc); err != nil {
		return model.Product{}, err
	}

	return doc.toModel(), nil
}

func (c *ProductsClient) Delete(ctx context.Context, id string, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	setBearer(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return responseErr(resp)
	}

	return nil
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
