package datasource

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

	"course-dashboard/internal/status"
	"course-dashboard/utils"

	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/spf13/cast"
)

type ClientConfig struct {
	BaseURL string
	Token   string
	PerPage int
	Timeout time.Duration
	Breaker utils.BreakerSettings
}

type client struct {
	// baseURL is the root of the remote data API.
	baseURL string

	// token is sent verbatim in the Authorization header when set.
	token string

	// perPage is the page size of the single list request per collection.
	perPage int

	// breaker short-circuits requests while the remote keeps failing.
	breaker *utils.CircuitBreaker

	// hc is the http client.
	hc *http.Client
}

// NewClient creates a DataService backed by a remote PocketBase-compatible
// REST API.
func NewClient(c ClientConfig) (*Service, error) {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return nil, fmt.Errorf("datasource: base url: %w", err)
	}
	if c.PerPage <= 0 {
		c.PerPage = 500
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	return &Service{src: &client{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		token:   c.Token,
		perPage: c.PerPage,
		breaker: utils.NewCircuitBreaker("remote-datasource", c.Breaker),
		hc: &http.Client{
			Timeout: c.Timeout,
		},
	}}, nil
}

func (c *client) records(ctx context.Context, collection string) ([]Fields, error) {
	var items []map[string]any
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		items, err = c.fetch(ctx, collection)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]Fields, 0, len(items))
	for _, item := range items {
		out = append(out, jsonFields(item))
	}
	return out, nil
}

// fetch calls GET /api/collections/{collection}/records.
func (c *client) fetch(ctx context.Context, collection string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("perPage", strconv.Itoa(c.perPage))
	q.Set("skipTotal", "1")
	endpoint := fmt.Sprintf("%s/api/collections/%s/records?%s", c.baseURL, url.PathEscape(collection), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: http.NewReq: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: %w: %d %s", status.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("fetch: json.Decode: %w", err)
	}
	return reply.Items, nil
}

// jsonFields adapts a decoded API item to Fields. Wrong or missing values
// read as the zero value.
type jsonFields map[string]any

func (f jsonFields) GetString(key string) string {
	return cast.ToString(f[key])
}

func (f jsonFields) GetInt(key string) int {
	return cast.ToInt(f[key])
}

func (f jsonFields) GetFloat(key string) float64 {
	return cast.ToFloat64(f[key])
}

func (f jsonFields) GetBool(key string) bool {
	return cast.ToBool(f[key])
}

func (f jsonFields) GetDateTime(key string) types.DateTime {
	dt, _ := types.ParseDateTime(f[key])
	return dt
}
