// Package splynx implements census.UpstreamClient on top of the
// Splynx ISP framework REST API (v2.0). Only the two read endpoints
// the exporter needs are covered: the customer list and per-customer
// internet services.
package splynx

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ipcensus/ipcensus/census"
)

const (
	customersEndpoint        = "admin/customers/customer"
	internetServicesEndpoint = "admin/customers/customer/%d/internet-services"
)

type Client struct {
	baseURL    string
	authHeader string
	limit      int
	client     census.HTTPClient
}

// New creates a client. apiKey/apiSecret go into a Basic auth header
// the way Splynx expects them. customerLimit bounds the customer list
// request, 0 keeps the upstream default.
func New(client census.HTTPClient,
	baseURL, apiKey, apiSecret string,
	customerLimit int) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is not set")
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("incorrect base url: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":"+apiSecret)),
		limit:      customerLimit,
		client:     client,
	}, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]census.Customer, error) {
	query := url.Values{}

	if c.limit > 0 {
		query.Set("limit", strconv.Itoa(c.limit))
	}

	customers := []census.Customer{}

	if err := c.get(ctx, customersEndpoint, query, &customers); err != nil {
		return nil, fmt.Errorf("cannot list customers: %w", err)
	}

	return customers, nil
}

func (c *Client) ListCustomerServices(ctx context.Context, customerID int64) ([]census.Service, error) {
	endpoint := fmt.Sprintf(internetServicesEndpoint, customerID)
	services := []census.Service{}

	if err := c.get(ctx, endpoint, nil, &services); err != nil {
		return nil, fmt.Errorf("cannot list services of customer %d: %w", customerID, err)
	}

	return services, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, target interface{}) error {
	fullURL := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a request: %w", err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck
		resp.Body.Close()
	}()

	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(target); err != nil {
		return fmt.Errorf("cannot parse a response: %w", err)
	}

	return nil
}
