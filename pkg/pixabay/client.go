package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-editor/pkg/client"
	"github.com/menta2k/image-editor/pkg/types"
)

// DefaultBaseURL is the public Pixabay API host
const DefaultBaseURL = "https://pixabay.com"

// Client searches the Pixabay image API
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	safeSearch bool
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Options tunes a Client. Zero values fall back to the API defaults.
type Options struct {
	BaseURL    string
	PerPage    int
	SafeSearch bool
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// searchResponse is the subset of the Pixabay response body we read
type searchResponse struct {
	Total     int                  `json:"total"`
	TotalHits int                  `json:"totalHits"`
	Hits      []types.SearchResult `json:"hits"`
}

// NewClient creates a Client for apiKey. The key is required.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pixabay: api key is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		perPage:    opts.PerPage,
		safeSearch: opts.SafeSearch,
		httpClient: httpClient,
		log:        log.WithField("component", "pixabay"),
	}, nil
}

// Search runs one photo search. A query that is blank after trimming fails
// with client.ErrInvalidQuery without touching the network. An empty hit
// list comes back together with client.ErrNoResults.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	q, err := client.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	body, err := c.sendRequest(ctx, "/api/", c.buildParams(q))
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &client.UnavailableError{Message: "unexpected response from image search", Err: err}
	}

	c.log.WithFields(logrus.Fields{"query": q, "hits": len(resp.Hits)}).Debug("search completed")

	if len(resp.Hits) == 0 {
		return []types.SearchResult{}, client.ErrNoResults
	}
	return resp.Hits, nil
}

func (c *Client) buildParams(q string) url.Values {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", q)
	params.Set("image_type", "photo")
	if c.perPage > 0 {
		params.Set("per_page", strconv.Itoa(c.perPage))
	}
	if c.safeSearch {
		params.Set("safesearch", "true")
	}
	return params
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &client.UnavailableError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &client.UnavailableError{Message: "could not reach image search", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &client.UnavailableError{Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.log.WithField("status", resp.StatusCode).Warn("search request rejected")
		return nil, &client.UnavailableError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}
