package kroger

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/homeplate/backend/internal/domain"
)

const (
	tokenPath    = "/v1/connect/oauth2/token"
	productsPath = "/v1/products"

	// Results requested per ingredient search; the provider orders them
	// by its own relevance.
	searchPageSize = 5

	// Refresh the access token this long before it actually expires.
	tokenExpirySlack = 60 * time.Second
)

// Client talks to the Kroger catalog API. It owns the confidential
// client secret and must only ever be constructed server-side; browser
// and mobile callers go through the sync endpoint instead.
type Client struct {
	rest         *resty.Client
	clientID     string
	clientSecret string
	rateLimiter  *rate.Limiter
	logger       *zap.Logger

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Kroger API client.
func NewClient(clientID, clientSecret, baseURL string, logger *zap.Logger) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "Homeplate/1.0")

	// Kroger's public plan allows 10000 calls/day; 2 req/s with a small
	// burst keeps a full sync run comfortably inside that.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		rest:         rest,
		clientID:     clientID,
		clientSecret: clientSecret,
		rateLimiter:  limiter,
		logger:       logger,
	}
}

// token returns a valid access token, fetching a new one via the OAuth2
// client-credentials grant when the cached token is missing or close to
// expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	var tok tokenResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      "product.compact",
		}).
		SetResult(&tok).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", domain.ErrCatalogAPIFailure, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: token request status %d", domain.ErrCatalogAPIFailure, resp.StatusCode())
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrCatalogAPIFailure)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// searchProducts looks up catalog candidates for one ingredient name at
// one store location.
func (c *Client) searchProducts(ctx context.Context, term, locationID string) ([]domain.Product, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"filter.term":       term,
			"filter.locationId": locationID,
			"filter.limit":      fmt.Sprintf("%d", searchPageSize),
		}).
		SetResult(&result).
		Get(productsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		// Token revoked mid-run: drop it so the next call re-authenticates
		c.tokenMu.Lock()
		c.accessToken = ""
		c.tokenMu.Unlock()
		return nil, fmt.Errorf("%w: status 401", domain.ErrCatalogAPIFailure)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode())
	}

	products := make([]domain.Product, 0, len(result.Data))
	for _, raw := range result.Data {
		products = append(products, mapProduct(raw))
	}
	return products, nil
}

// BatchSearchProducts resolves a list of ingredient names against one
// store location, fanning the per-name searches out concurrently. A name
// whose lookup fails upstream is simply absent from the result map; the
// caller treats that as "no match found", not as a batch failure.
func (c *Client) BatchSearchProducts(ctx context.Context, ingredientNames []string, locationID string) (map[string][]domain.Product, error) {
	// Fail the batch up front if we cannot authenticate at all.
	if _, err := c.token(ctx); err != nil {
		return nil, err
	}

	results := make(map[string][]domain.Product, len(ingredientNames))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range ingredientNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			products, err := c.searchProducts(ctx, name, locationID)
			if err != nil {
				c.logger.Warn("catalog search failed",
					zap.String("ingredient", name),
					zap.Error(err))
				return
			}
			if len(products) == 0 {
				return
			}

			mu.Lock()
			results[name] = products
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return results, nil
}
