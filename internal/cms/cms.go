// Package cms fetches homepage content from Sanity. Missing or failing CMS
// lookups fall back to the built-in default copy; the storefront never
// renders an error for content.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured means no Sanity project is set; callers should use
// DefaultHomepage.
var ErrNotConfigured = errors.New("cms not configured")

type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type InstagramPost struct {
	Image     string `json:"image,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Permalink string `json:"permalink"`
	Caption   string `json:"caption,omitempty"`
}

type Homepage struct {
	HeroTitle           string          `json:"heroTitle,omitempty"`
	HeroSubtitle        string          `json:"heroSubtitle,omitempty"`
	HeroCtas            []CTA           `json:"heroCtas,omitempty"`
	FeaturedHeading     string          `json:"featuredHeading"`
	FeaturedDescription string          `json:"featuredDescription"`
	InstagramPosts      []InstagramPost `json:"instagramPosts,omitempty"`
}

// DefaultHomepage is the copy shown when the CMS has no homepage document
// or is unreachable.
func DefaultHomepage() Homepage {
	return Homepage{
		HeroTitle:    "Artisan Treats | Made with Love",
		HeroSubtitle: "Discover handcrafted pastries, cookies, and cakes made fresh daily in Austin, Texas. Every bite tells a story of passion and tradition.",
		HeroCtas: []CTA{
			{Label: "Shop Our Treats", Href: "/shop"},
			{Label: "Our Story", Href: "/about"},
		},
		FeaturedHeading:     "Featured Products",
		FeaturedDescription: "Discover our most popular handcrafted treats, baked fresh daily with love and the finest ingredients.",
	}
}

const homepageQuery = `*[_type == "homepage"][0]{
  heroTitle,
  heroSubtitle,
  heroCtas[]{label, href},
  featuredHeading,
  featuredDescription,
  instagramPosts[]{"image": image.asset->url, "alt": image.alt, imageUrl, permalink, caption}
}`

type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	HTTPClient *http.Client
	Logger     *log.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	cdnURL     string
	dataset    string
	apiVersion string
	token      string
	logger     *log.Logger
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Client{
		httpClient: httpClient,
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
		token:      cfg.Token,
		logger:     logger,
	}
	if cfg.ProjectID != "" {
		c.baseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
		c.cdnURL = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	return c
}

// WithBaseURL overrides both API hosts, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	c.cdnURL = base
	return c
}

// Homepage runs the homepage GROQ query. Preview mode reads draft content
// through the uncached API host, which requires the token.
func (c *Client) Homepage(ctx context.Context, preview bool) (*Homepage, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	host := c.cdnURL
	if preview {
		host = c.baseURL
	}
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s", host, c.apiVersion, c.dataset)

	params := url.Values{}
	params.Set("query", homepageQuery)
	if preview {
		params.Set("perspective", "previewDrafts")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build cms request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query cms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cms query status %d: %s", resp.StatusCode, body)
	}

	var decoded struct {
		Result *Homepage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode cms response: %w", err)
	}
	if decoded.Result == nil {
		return nil, ErrNotConfigured
	}
	return decoded.Result, nil
}
