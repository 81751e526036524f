// Package instagram proxies the Instagram Graph API for the storefront
// feed. Responses are cached in-process and any failure serves the static
// fallback posts, so the feed endpoint never errors.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const defaultBaseURL = "https://graph.instagram.com"

const (
	// SourceGraph marks posts fetched live from the Graph API.
	SourceGraph = "graph"
	// SourceFallback marks the built-in posts served when the API is
	// unavailable or unconfigured.
	SourceFallback = "fallback"
)

type Post struct {
	ID            string `json:"id"`
	ImageURL      string `json:"image_url"`
	Caption       string `json:"caption"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int    `json:"like_count"`
	CommentsCount int    `json:"comments_count"`
}

type Config struct {
	AccessToken string
	CacheTTL    time.Duration
	BaseURL     string
	HTTPClient  *http.Client
	Logger      *log.Logger
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	ttl         time.Duration
	logger      *log.Logger

	mu        sync.Mutex
	cached    []Post
	fetchedAt time.Time
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		ttl:         ttl,
		logger:      logger,
	}
}

// Recent returns recent feed posts and the source they came from. It never
// returns an error: failures are logged and answered with fallback posts.
func (c *Client) Recent(ctx context.Context) ([]Post, string) {
	if c.accessToken == "" {
		return fallbackPosts(), SourceFallback
	}

	c.mu.Lock()
	if len(c.cached) > 0 && time.Since(c.fetchedAt) < c.ttl {
		cached := c.cached
		c.mu.Unlock()
		return cached, SourceGraph
	}
	c.mu.Unlock()

	posts, err := c.fetch(ctx)
	if err != nil || len(posts) == 0 {
		c.logger.Printf("instagram: fetch failed, serving fallback: %v", err)
		return fallbackPosts(), SourceFallback
	}

	c.mu.Lock()
	c.cached = posts
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return posts, SourceGraph
}

func (c *Client) fetch(ctx context.Context) ([]Post, error) {
	params := url.Values{}
	params.Set("fields", "id,caption,media_url,permalink,timestamp,like_count,comments_count")
	params.Set("limit", "12")
	params.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/media?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("media request status %d: %s", resp.StatusCode, body)
	}

	var decoded struct {
		Data []struct {
			ID            string `json:"id"`
			Caption       string `json:"caption"`
			MediaURL      string `json:"media_url"`
			Permalink     string `json:"permalink"`
			Timestamp     string `json:"timestamp"`
			LikeCount     int    `json:"like_count"`
			CommentsCount int    `json:"comments_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode media response: %w", err)
	}

	posts := make([]Post, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		posts = append(posts, Post{
			ID:            item.ID,
			ImageURL:      item.MediaURL,
			Caption:       item.Caption,
			Permalink:     item.Permalink,
			Timestamp:     item.Timestamp,
			LikeCount:     item.LikeCount,
			CommentsCount: item.CommentsCount,
		})
	}
	return posts, nil
}

func fallbackPosts() []Post {
	return []Post{
		{
			ID:        "fallback-1",
			ImageURL:  "/images/feed/croissants.jpg",
			Caption:   "Butter croissants, laminated by hand every morning.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-06-03T08:00:00+0000",
			LikeCount: 182, CommentsCount: 14,
		},
		{
			ID:        "fallback-2",
			ImageURL:  "/images/feed/sourdough.jpg",
			Caption:   "Sourdough fresh out of the oven.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-05-28T08:00:00+0000",
			LikeCount: 240, CommentsCount: 21,
		},
		{
			ID:        "fallback-3",
			ImageURL:  "/images/feed/cookies.jpg",
			Caption:   "Brown butter chocolate chip cookies, Austin's favorite.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-05-20T08:00:00+0000",
			LikeCount: 133, CommentsCount: 9,
		},
		{
			ID:        "fallback-4",
			ImageURL:  "/images/feed/cakes.jpg",
			Caption:   "Custom celebration cakes, made to order.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-05-12T08:00:00+0000",
			LikeCount: 201, CommentsCount: 17,
		},
		{
			ID:        "fallback-5",
			ImageURL:  "/images/feed/kolaches.jpg",
			Caption:   "Weekend kolaches are back.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-05-05T08:00:00+0000",
			LikeCount: 96, CommentsCount: 6,
		},
		{
			ID:        "fallback-6",
			ImageURL:  "/images/feed/paindemie.jpg",
			Caption:   "Pain de mie, sliced thick for french toast.",
			Permalink: "https://www.instagram.com/biglousbakery/",
			Timestamp: "2024-04-27T08:00:00+0000",
			LikeCount: 154, CommentsCount: 11,
		},
	}
}
