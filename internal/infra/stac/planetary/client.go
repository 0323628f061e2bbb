package planetary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
)

const (
	defaultCatalogURL = "https://planetarycomputer.microsoft.com/api/stac/v1"
	defaultSigningURL = "https://planetarycomputer.microsoft.com/api/sas/v1"
	cloudCoverField   = "eo:cloud_cover"
	datetimeField     = "datetime"
)

// Config configures the catalog client.
type Config struct {
	CatalogURL string
	SigningURL string
	PageSize   int
	MaxPages   int
	Timeout    time.Duration
}

// Client searches the Planetary Computer STAC API and signs asset hrefs with collection SAS tokens.
type Client struct {
	catalogURL string
	signingURL string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	tokens map[string]sasToken
}

type sasToken struct {
	value  string
	expiry time.Time
}

// NewClient builds a catalog client.
func NewClient(cfg Config) *Client {
	catalog := strings.TrimSpace(cfg.CatalogURL)
	if catalog == "" {
		catalog = defaultCatalogURL
	}
	signing := strings.TrimSpace(cfg.SigningURL)
	if signing == "" {
		signing = defaultSigningURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Client{
		catalogURL: strings.TrimRight(catalog, "/"),
		signingURL: strings.TrimRight(signing, "/"),
		pageSize:   cfg.PageSize,
		maxPages:   maxPages,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		tokens:     make(map[string]sasToken),
	}
}

var _ imagery.Catalog = (*Client)(nil)

// Search runs an item search and follows next links until exhausted or the page cap is hit.
func (c *Client) Search(ctx context.Context, params imagery.SearchParams) ([]imagery.Scene, error) {
	body := map[string]any{
		"collections": params.Collections,
		"bbox":        params.BBox.Slice(),
		"datetime":    params.Window.String(),
	}
	if len(params.Query) > 0 {
		body["query"] = params.Query
	}
	if c.pageSize > 0 {
		body["limit"] = c.pageSize
	}

	next := &link{Href: c.catalogURL + "/search", Method: http.MethodPost, Body: body}
	var scenes []imagery.Scene
	for page := 0; next != nil && page < c.maxPages; page++ {
		collection, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, f := range collection.Features {
			scene, err := f.toScene()
			if err != nil {
				return nil, err
			}
			scenes = append(scenes, scene)
		}
		next = collection.nextLink(next)
	}
	return scenes, nil
}

// Sign appends the collection SAS token to every asset href of scene.
func (c *Client) Sign(ctx context.Context, scene imagery.Scene) (imagery.Scene, error) {
	token, err := c.token(ctx, scene.Collection)
	if err != nil {
		return imagery.Scene{}, err
	}

	signed := scene
	signed.Assets = make(map[string]imagery.Asset, len(scene.Assets))
	for name, asset := range scene.Assets {
		asset.Href = signHref(asset.Href, token)
		signed.Assets[name] = asset
	}
	return signed, nil
}

func signHref(href, token string) string {
	if strings.Contains(href, "?") {
		return href + "&" + token
	}
	return href + "?" + token
}

func (c *Client) token(ctx context.Context, collection string) (string, error) {
	if strings.TrimSpace(collection) == "" {
		return "", errors.New("scene has no collection to sign against")
	}

	c.mu.Lock()
	cached, ok := c.tokens[collection]
	c.mu.Unlock()
	if ok && c.now().Add(time.Minute).Before(cached.expiry) {
		return cached.value, nil
	}

	endpoint := c.signingURL + "/token/" + collection
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	payload, err := c.do(req, "token")
	if err != nil {
		return "", err
	}

	var raw tokenResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if raw.Token == "" {
		return "", fmt.Errorf("token response for %s carried no token", collection)
	}

	c.mu.Lock()
	c.tokens[collection] = sasToken{value: raw.Token, expiry: raw.Expiry}
	c.mu.Unlock()
	return raw.Token, nil
}

func (c *Client) fetchPage(ctx context.Context, l *link) (itemCollection, error) {
	method := strings.ToUpper(l.Method)
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if method == http.MethodPost {
		payload, err := json.Marshal(l.Body)
		if err != nil {
			return itemCollection{}, fmt.Errorf("encode search request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.Href, reqBody)
	if err != nil {
		return itemCollection{}, fmt.Errorf("build search request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/geo+json")

	payload, err := c.do(req, "search")
	if err != nil {
		return itemCollection{}, err
	}

	var out itemCollection
	if err := json.Unmarshal(payload, &out); err != nil {
		return itemCollection{}, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, what string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%s request error: status=%d body=%s", what, resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", what, err)
	}
	return body, nil
}

type tokenResponse struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"msft:expiry"`
}

type itemCollection struct {
	Features []feature `json:"features"`
	Links    []link    `json:"links"`
}

// nextLink resolves the rel=next link, merging its body over the previous request when asked to.
func (ic itemCollection) nextLink(prev *link) *link {
	for _, l := range ic.Links {
		if l.Rel != "next" || l.Href == "" {
			continue
		}
		next := l
		if next.Merge && prev != nil {
			merged := make(map[string]any, len(prev.Body)+len(next.Body))
			for k, v := range prev.Body {
				merged[k] = v
			}
			for k, v := range next.Body {
				merged[k] = v
			}
			next.Body = merged
		}
		return &next
	}
	return nil
}

type link struct {
	Rel    string         `json:"rel"`
	Href   string         `json:"href"`
	Method string         `json:"method,omitempty"`
	Body   map[string]any `json:"body,omitempty"`
	Merge  bool           `json:"merge,omitempty"`
}

type feature struct {
	ID         string                     `json:"id"`
	Collection string                     `json:"collection"`
	Properties map[string]json.RawMessage `json:"properties"`
	Assets     map[string]featureAsset    `json:"assets"`
}

type featureAsset struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

func (f feature) toScene() (imagery.Scene, error) {
	rawCover, ok := f.Properties[cloudCoverField]
	if !ok {
		return imagery.Scene{}, fmt.Errorf("item %s has no %s property", f.ID, cloudCoverField)
	}
	var cover float64
	if err := json.Unmarshal(rawCover, &cover); err != nil {
		return imagery.Scene{}, fmt.Errorf("item %s %s: %w", f.ID, cloudCoverField, err)
	}

	datetime, err := f.datetime()
	if err != nil {
		return imagery.Scene{}, err
	}

	assets := make(map[string]imagery.Asset, len(f.Assets))
	for name, a := range f.Assets {
		assets[name] = imagery.Asset{Href: a.Href, Type: a.Type}
	}

	return imagery.Scene{
		ID:         f.ID,
		Collection: f.Collection,
		Datetime:   datetime.UTC(),
		CloudCover: cover,
		Assets:     assets,
	}, nil
}

// datetime is the scene's capture time; items without a parseable RFC 3339 value are rejected.
func (f feature) datetime() (time.Time, error) {
	raw, ok := f.Properties[datetimeField]
	if !ok {
		return time.Time{}, fmt.Errorf("item %s has no %s property", f.ID, datetimeField)
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, fmt.Errorf("item %s %s: %w", f.ID, datetimeField, err)
	}
	if value == nil {
		return time.Time{}, fmt.Errorf("item %s has a null %s", f.ID, datetimeField)
	}
	parsed, err := time.Parse(time.RFC3339Nano, *value)
	if err != nil {
		return time.Time{}, fmt.Errorf("item %s %s: %w", f.ID, datetimeField, err)
	}
	return parsed, nil
}
