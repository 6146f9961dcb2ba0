package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// Variant is a product variant as served by the catalog service
type Variant struct {
	ID             string `json:"id"`
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	InStock        bool   `json:"in_stock"`
}

// ShippingOption is a shipping option as served by the fulfillment service
type ShippingOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// StockLocation is a warehouse or store that can receive returns
type StockLocation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ReturnReason is a merchant-configured reason code for returned items
type ReturnReason struct {
	ID          string `json:"id"`
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// CatalogClient handles communication with the product catalog service
type CatalogClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewCatalogClient(baseURL, token string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *CatalogClient) GetVariant(ctx context.Context, variantID string) (*Variant, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/internal/variants/%s", c.baseURL, url.PathEscape(variantID)), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, models.NewUpstreamError("catalog service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.NewNotFoundError("variant")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, models.NewUpstreamError("catalog service",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var variant Variant
	if err := json.NewDecoder(resp.Body).Decode(&variant); err != nil {
		return nil, models.NewUpstreamError("catalog service", err)
	}
	return &variant, nil
}

func (c *CatalogClient) SearchVariants(ctx context.Context, query string) ([]Variant, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/internal/variants?q=%s", c.baseURL, url.QueryEscape(query)), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, models.NewUpstreamError("catalog service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, models.NewUpstreamError("catalog service",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var result struct {
		Variants []Variant `json:"variants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, models.NewUpstreamError("catalog service", err)
	}
	return result.Variants, nil
}

// FulfillmentClient handles communication with the fulfillment service
// for shipping options, stock locations and return reasons
type FulfillmentClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewFulfillmentClient(baseURL, token string) *FulfillmentClient {
	return &FulfillmentClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *FulfillmentClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.NewUpstreamError("fulfillment service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.NewNotFoundError("resource")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.NewUpstreamError("fulfillment service",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewUpstreamError("fulfillment service", err)
	}
	return nil
}

func (c *FulfillmentClient) GetOption(ctx context.Context, optionID string) (*ShippingOption, error) {
	var option ShippingOption
	if err := c.get(ctx, "/internal/shipping-options/"+url.PathEscape(optionID), &option); err != nil {
		return nil, err
	}
	return &option, nil
}

func (c *FulfillmentClient) ListOptions(ctx context.Context) ([]ShippingOption, error) {
	var result struct {
		Options []ShippingOption `json:"shipping_options"`
	}
	if err := c.get(ctx, "/internal/shipping-options", &result); err != nil {
		return nil, err
	}
	return result.Options, nil
}

func (c *FulfillmentClient) ListLocations(ctx context.Context) ([]StockLocation, error) {
	var result struct {
		Locations []StockLocation `json:"stock_locations"`
	}
	if err := c.get(ctx, "/internal/stock-locations", &result); err != nil {
		return nil, err
	}
	return result.Locations, nil
}

func (c *FulfillmentClient) ListReasons(ctx context.Context) ([]ReturnReason, error) {
	var result struct {
		Reasons []ReturnReason `json:"return_reasons"`
	}
	if err := c.get(ctx, "/internal/return-reasons", &result); err != nil {
		return nil, err
	}
	return result.Reasons, nil
}

// FileStoreClient uploads shipping label files to the file service
type FileStoreClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewFileStoreClient(baseURL, token string) *FileStoreClient {
	return &FileStoreClient{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *FileStoreClient) UploadLabel(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/internal/files", &buf)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", models.NewUpstreamError("file service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", models.NewUpstreamError("file service",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", models.NewUpstreamError("file service", err)
	}
	return result.URL, nil
}
