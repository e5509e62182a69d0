package alphavantage

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"

	OutputSizeFull    = "full"
	OutputSizeCompact = "compact"

	DataTypeJSON = "json"
	DataTypeCSV  = "csv"

	defaultUserAgent = "quotepulse/1.0"
)

// Client fetches TIME_SERIES_DAILY data from Alpha Vantage.
type Client struct {
	// baseURL is the query endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// outputSize is "full" (20+ years) or "compact" (latest 100 sessions).
	outputSize string
	// dataType is "json" or "csv".
	dataType  string
	userAgent string
}

// ClientOption is a configuration option for the Alpha Vantage client.
type ClientOption func(*Client)

// WithBaseURL sets the query endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithOutputSize selects "full" or "compact" history.
func WithOutputSize(size string) ClientOption {
	return func(c *Client) {
		if size == OutputSizeFull || size == OutputSizeCompact {
			c.outputSize = size
		}
	}
}

// WithDataType selects the "json" or "csv" response format.
func WithDataType(dataType string) ClientOption {
	return func(c *Client) {
		if dataType == DataTypeJSON || dataType == DataTypeCSV {
			c.dataType = dataType
		}
	}
}

// NewClient creates a client with full JSON history and a 15s HTTP timeout
// unless overridden.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: NewHTTPClient(15 * time.Second),
		outputSize: OutputSizeFull,
		dataType:   DataTypeJSON,
		userAgent:  defaultUserAgent,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NewHTTPClient returns an http.Client with the given overall timeout and
// bounded dial/handshake timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
