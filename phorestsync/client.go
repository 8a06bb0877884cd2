package phorestsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/sirupsen/logrus"
)

// Client is the authenticated gateway to the Phorest third-party API. It knows
// nothing about sync semantics: it builds URLs under the business, attaches
// basic auth, and surfaces non-2xx responses as *APIError.
type Client struct {
	baseURL    string
	businessId string
	username   string
	password   string
	http       *http.Client
	limiter    <-chan time.Time
	logger     *logrus.Logger
}

// APIError is a non-success response from the external platform.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("phorest api error %d: %s", e.Status, e.Body)
}

func NewClient(businessId string, username string, password string) (*Client, error) {
	if strings.TrimSpace(businessId) == "" {
		return nil, errors.New("phorest business id is empty")
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("phorest credentials are empty")
	}

	baseURL := strings.TrimSpace(os.Getenv("PHOREST_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://platform-us.phorest.com/third-party-api-server/api"
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("PHOREST_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		businessId: strings.TrimSpace(businessId),
		username:   NormalizeUsername(username),
		password:   password,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    time.Tick(interval),
		logger:     config.GetLogger(),
	}, nil
}

// NormalizeUsername adds the "global/" namespace prefix Phorest requires on
// API usernames when the caller supplied a bare name.
func NormalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" || strings.Contains(username, "/") {
		return username
	}
	return "global/" + username
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	<-c.limiter
	endpoint := c.baseURL + "/business/" + c.businessId + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	c.logger.WithFields(logrus.Fields{
		"method":  http.MethodGet,
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Info("phorest request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// GetList fetches path and extracts the record list from whichever envelope
// shape the endpoint happens to use.
func (c *Client) GetList(ctx context.Context, path string, params url.Values, keys ...string) ([]json.RawMessage, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return ExtractList(body, keys...), nil
}

// ExtractList pulls a list of records out of a response body that may be
// shaped as `{"_embedded":{"<key>":[...]}}`, `{"<key>":[...]}`, or a bare
// array. Keys are tried in order within each shape; when nothing matches the
// result is an empty list, never an error.
func ExtractList(body []byte, keys ...string) []json.RawMessage {
	var envelope struct {
		Embedded map[string]json.RawMessage `json:"_embedded"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Embedded != nil {
		for _, key := range keys {
			if list, ok := asList(envelope.Embedded[key]); ok {
				return list
			}
		}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err == nil {
		for _, key := range keys {
			if list, ok := asList(top[key]); ok {
				return list
			}
		}
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare
	}

	return []json.RawMessage{}
}

func asList(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}
