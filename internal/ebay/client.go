package ebay

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	ProductionAPIBaseURL = "https://api.ebay.com"
	SandboxAPIBaseURL    = "https://api.sandbox.ebay.com"

	browseSearchPath = "/buy/browse/v1/item_summary/search"
	marketplaceID    = "EBAY_US"
)

// Money is a price value as the Browse API returns it.
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Amount parses the value; ok is false for absent or non-numeric prices.
func (m Money) Amount() (float64, bool) {
	if m.Value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ShippingOption is one shipping choice on a listing.
type ShippingOption struct {
	ShippingCost Money `json:"shippingCost"`
}

// ItemSummary is a single Browse API search result.
type ItemSummary struct {
	ItemID          string           `json:"itemId"`
	Title           string           `json:"title"`
	Condition       string           `json:"condition"`
	Price           Money            `json:"price"`
	ShippingOptions []ShippingOption `json:"shippingOptions"`
	ItemWebURL      string           `json:"itemWebUrl"`
}

type searchResponse struct {
	Total         int           `json:"total"`
	ItemSummaries []ItemSummary `json:"itemSummaries"`
}

// ClientOpts configures a Browse API client.
type ClientOpts struct {
	BaseURL string
	Tokens  TokenProvider
	Timeout time.Duration
}

// Client is a thin eBay Browse API client. It handles bearer auth and the
// single forced token refresh on 401; search strategy composition lives in
// the Comparator.
type Client struct {
	httpClient *resty.Client
	tokens     TokenProvider
}

// NewClient creates a Browse API client. BaseURL defaults to production.
func NewClient(opts ClientOpts) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = ProductionAPIBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":                  "application/json",
			"X-EBAY-C-MARKETPLACE-ID": marketplaceID,
			"X-EBAY-C-ENDUSERCTX":     "contextualLocation=country=US",
		})
	return &Client{httpClient: httpClient, tokens: opts.Tokens}
}

// searchParams is one search strategy's request shape.
type searchParams struct {
	Query string
	Sort  string
	Limit int
}

// Search runs one Browse API item-summary search. A 401 triggers exactly
// one token refresh and retry; a second 401 is an ordinary error.
func (c *Client) Search(ctx context.Context, params searchParams) ([]ItemSummary, error) {
	res, result, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() == http.StatusUnauthorized {
		c.tokens.Invalidate()
		res, result, err = c.search(ctx, params)
		if err != nil {
			return nil, err
		}
	}
	if res.IsError() {
		return nil, fmt.Errorf("browse search failed: %s %s (status: %d)",
			res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return result.ItemSummaries, nil
}

func (c *Client) search(ctx context.Context, params searchParams) (*resty.Response, *searchResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, nil, err
	}

	result := &searchResponse{}
	req := c.httpClient.NewRequest().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParam("q", params.Query).
		SetQueryParam("limit", strconv.Itoa(params.Limit)).
		SetResult(result)
	if params.Sort != "" {
		req.SetQueryParam("sort", params.Sort)
	}

	res, err := req.Get(browseSearchPath)
	if err != nil {
		return nil, nil, fmt.Errorf("browse search request failed: %w", err)
	}
	return res, result, nil
}
