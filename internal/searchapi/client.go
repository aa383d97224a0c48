// Package searchapi is the HTTP client for the hotel search endpoint.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"hotelsearch/internal/metrics"
	"hotelsearch/internal/models"
)

const searchPath = "/api/v1/hotels/search"

const (
	msgUnavailable = "search service unavailable"
	msgBusy        = "too many searches, try again"
	msgBadResponse = "search service returned an invalid response"
)

// FetchError is a failed search. Message is what the endpoint reported, or a
// generic text when it reported nothing or could not be reached. Status is 0
// when no response arrived.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return e.Message
}

// Client calls the hotel search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger

	redis    *redis.Client
	local    *ccache.Cache[[]models.HotelRecord]
	cacheTTL time.Duration
	limiter  *rate.Limiter
}

type searchResponse struct {
	Result []models.HotelRecord `json:"result"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient constructs a client with baseURL and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "searchapi").Logger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
	}
}

// UseRedisCache configures optional Redis caching of search responses.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseLocalCache keeps up to size responses in process in front of Redis.
func (c *Client) UseLocalCache(size int64, ttl time.Duration) {
	if size <= 0 {
		return
	}
	c.local = ccache.New(ccache.Configure[[]models.HotelRecord]().MaxSize(size))
	c.cacheTTL = ttl
}

// UseRateLimit caps outgoing searches at rps with the given burst.
func (c *Client) UseRateLimit(rps float64, burst int) {
	if rps <= 0 {
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Close stops the local cache worker.
func (c *Client) Close() {
	if c.local != nil {
		c.local.Stop()
	}
}

// Search posts payload to the search endpoint and returns its result list.
func (c *Client) Search(ctx context.Context, payload models.SearchPayload) ([]models.HotelRecord, error) {
	key, err := CacheKey(payload)
	if err != nil {
		return nil, err
	}
	if hotels, ok := c.readCache(ctx, key); ok {
		return hotels, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("search rate limited")
			return nil, &FetchError{Status: http.StatusTooManyRequests, Message: msgBusy}
		}
	}

	var resp searchResponse
	if err := c.doPost(ctx, c.baseURL+searchPath, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		resp.Result = []models.HotelRecord{}
	}
	c.writeCache(ctx, key, resp.Result)
	return resp.Result, nil
}

// CacheKey derives the response cache key from the non-empty payload fields.
func CacheKey(payload models.SearchPayload) (string, error) {
	v, err := query.Values(payload)
	if err != nil {
		return "", err
	}
	return "hotels:search:" + v.Encode(), nil
}

func (c *Client) readCache(ctx context.Context, key string) ([]models.HotelRecord, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	if c.local != nil {
		if item := c.local.Get(key); item != nil && !item.Expired() {
			metrics.IncCache("local", "hit")
			return item.Value(), true
		}
		metrics.IncCache("local", "miss")
	}
	if c.redis == nil {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		metrics.IncCache("redis", "miss")
		return nil, false
	}
	var hotels []models.HotelRecord
	if err := json.Unmarshal([]byte(val), &hotels); err != nil {
		metrics.IncCache("redis", "miss")
		return nil, false
	}
	metrics.IncCache("redis", "hit")
	if c.local != nil {
		c.local.Set(key, hotels, c.cacheTTL)
	}
	return hotels, true
}

func (c *Client) writeCache(ctx context.Context, key string, hotels []models.HotelRecord) {
	if c.cacheTTL <= 0 {
		return
	}
	if c.local != nil {
		c.local.Set(key, hotels, c.cacheTTL)
	}
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(hotels)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", req.Header.Get("X-Request-ID")).Msg("search request failed")
		return &FetchError{Message: msgUnavailable}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("search endpoint responded")

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn().Err(err).Str("request_id", req.Header.Get("X-Request-ID")).Msg("search response decode failed")
		return &FetchError{Status: resp.StatusCode, Message: msgBadResponse}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return &FetchError{Status: resp.StatusCode, Message: e.Message}
	}
	return &FetchError{Status: resp.StatusCode, Message: fmt.Sprintf("search failed: http %d", resp.StatusCode)}
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// HealthCheck checks if the search endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}
