package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/recipematch/backend/internal/domain"
	"go.uber.org/zap"
)

const defaultPageSize = 100

// ClientConfig holds the store API connection settings
type ClientConfig struct {
	BaseURL        string
	PublishableKey string
	PageSize       int
	Timeout        time.Duration
}

// Client reads products from the store's public product API.
type Client struct {
	http     *resty.Client
	pageSize int
	logger   *zap.Logger
}

type storeProduct struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Handle    string `json:"handle"`
	Thumbnail string `json:"thumbnail"`
	Tags      []struct {
		Value string `json:"value"`
	} `json:"tags"`
	Variants []struct {
		ID              string `json:"id"`
		CalculatedPrice *struct {
			CalculatedAmount *float64 `json:"calculated_amount"`
		} `json:"calculated_price"`
	} `json:"variants"`
}

type productsPage struct {
	Products []storeProduct `json:"products"`
	Count    int            `json:"count"`
	Offset   int            `json:"offset"`
	Limit    int            `json:"limit"`
}

// NewClient creates a store API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.PublishableKey != "" {
		client.SetHeader("x-publishable-api-key", cfg.PublishableKey)
	}

	return &Client{http: client, pageSize: pageSize, logger: logger}
}

// ListProducts pages through the store catalog until limit products are read
// or the catalog is exhausted.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product

	for offset := 0; limit <= 0 || len(products) < limit; {
		size := c.pageSize
		if limit > 0 && limit-len(products) < size {
			size = limit - len(products)
		}

		page, err := c.fetchPage(ctx, offset, size)
		if err != nil {
			return nil, err
		}

		for _, sp := range page.Products {
			products = append(products, toDomainProduct(sp))
		}

		offset += len(page.Products)
		if len(page.Products) == 0 || (page.Count > 0 && offset >= page.Count) {
			break
		}
	}

	c.logger.Debug("catalog fetched from store", zap.Int("products", len(products)))
	return products, nil
}

func (c *Client) fetchPage(ctx context.Context, offset, size int) (*productsPage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(size),
			"offset": strconv.Itoa(offset),
			"fields": "id,title,handle,thumbnail,*tags,*variants,*variants.calculated_price",
		}).
		Get("/store/products")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("store API returned status %d", resp.StatusCode())
	}

	var page productsPage
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("failed to decode products page: %w", err)
	}

	return &page, nil
}

func toDomainProduct(sp storeProduct) domain.Product {
	p := domain.Product{
		ID:        sp.ID,
		Title:     sp.Title,
		Handle:    sp.Handle,
		Thumbnail: sp.Thumbnail,
	}

	for _, tag := range sp.Tags {
		if tag.Value != "" {
			p.Tags = append(p.Tags, tag.Value)
		}
	}

	for _, v := range sp.Variants {
		variant := domain.Variant{ID: v.ID}
		if v.CalculatedPrice != nil && v.CalculatedPrice.CalculatedAmount != nil {
			amount := *v.CalculatedPrice.CalculatedAmount
			variant.Price = &amount
		}
		p.Variants = append(p.Variants, variant)
	}

	return p
}
