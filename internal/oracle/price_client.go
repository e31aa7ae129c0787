package oracle

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default price API settings.
const (
	DefaultMoralisBaseURL   = "https://solana-gateway.moralis.io"
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	DefaultPriceTimeout     = 10 * time.Second
	DefaultRatePerSecond    = 20
	DefaultRateBurst        = 5

	lamportsPerSOL = 1e9
)

// PriceSource fetches raw prices and metadata. Unlike Gateway it reports errors.
type PriceSource interface {
	NativePriceUSD(ctx context.Context) (float64, error)
	TokenPriceInNative(ctx context.Context, mint string) (float64, error)
	TokenSymbol(ctx context.Context, mint string) (string, error)
}

// PriceClientConfig configures PriceClient.
type PriceClientConfig struct {
	MoralisBaseURL   string
	CoinGeckoBaseURL string
	APIKey           string
	Timeout          time.Duration
	RatePerSecond    float64
	RateBurst        int
}

// PriceClient queries a Moralis-compatible Solana gateway for token prices and
// metadata and a CoinGecko-compatible API for the SOL/USD rate.
// Every request is a single attempt.
type PriceClient struct {
	client        *fasthttp.Client
	moralisBase   string
	coinGeckoBase string
	apiKey        string
	timeout       time.Duration
	limiter       *rate.Limiter
	logger        *zap.Logger
}

var _ PriceSource = (*PriceClient)(nil)

// NewPriceClient creates a new PriceClient.
func NewPriceClient(cfg PriceClientConfig, logger *zap.Logger) *PriceClient {
	if cfg.MoralisBaseURL == "" {
		cfg.MoralisBaseURL = DefaultMoralisBaseURL
	}
	if cfg.CoinGeckoBaseURL == "" {
		cfg.CoinGeckoBaseURL = DefaultCoinGeckoBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPriceTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = DefaultRateBurst
	}

	return &PriceClient{
		client:        &fasthttp.Client{},
		moralisBase:   strings.TrimRight(cfg.MoralisBaseURL, "/"),
		coinGeckoBase: strings.TrimRight(cfg.CoinGeckoBaseURL, "/"),
		apiKey:        cfg.APIKey,
		timeout:       cfg.Timeout,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		logger:        logger.Named("PriceClient"),
	}
}

type simplePriceResponse struct {
	Solana struct {
		USD numeric `json:"usd"`
	} `json:"solana"`
}

// NativePriceUSD returns the SOL/USD rate.
func (c *PriceClient) NativePriceUSD(ctx context.Context) (float64, error) {
	requestURL := c.coinGeckoBase + "/simple/price?ids=solana&vs_currencies=usd"

	var resp simplePriceResponse
	if err := c.getJSON(ctx, requestURL, false, &resp); err != nil {
		return 0, err
	}
	return float64(resp.Solana.USD), nil
}

type tokenPriceResponse struct {
	NativePrice *struct {
		Value numeric `json:"value"`
	} `json:"nativePrice"`
}

// TokenPriceInNative returns the price of one token unit in SOL.
func (c *PriceClient) TokenPriceInNative(ctx context.Context, mint string) (float64, error) {
	requestURL := fmt.Sprintf("%s/token/mainnet/%s/price", c.moralisBase, url.PathEscape(mint))

	var resp tokenPriceResponse
	if err := c.getJSON(ctx, requestURL, true, &resp); err != nil {
		return 0, err
	}
	if resp.NativePrice == nil {
		return 0, fmt.Errorf("no native price for %s", mint)
	}
	return float64(resp.NativePrice.Value) / lamportsPerSOL, nil
}

type tokenMetadataResponse struct {
	Symbol string `json:"symbol"`
}

// TokenSymbol returns the ticker of mint.
func (c *PriceClient) TokenSymbol(ctx context.Context, mint string) (string, error) {
	requestURL := fmt.Sprintf("%s/token/mainnet/%s/metadata", c.moralisBase, url.PathEscape(mint))

	var resp tokenMetadataResponse
	if err := c.getJSON(ctx, requestURL, true, &resp); err != nil {
		return "", err
	}
	if resp.Symbol == "" {
		return "", fmt.Errorf("no symbol for %s", mint)
	}
	return resp.Symbol, nil
}

func (c *PriceClient) getJSON(ctx context.Context, requestURL string, withKey bool, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if withKey && c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting price API", zap.String("url", requestURL))

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return fmt.Errorf("request %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return fmt.Errorf("request %s: %w", requestURL, err)
		}
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("request %s failed with status %d: %s", requestURL, resp.StatusCode(), truncate(body, 256))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", requestURL, err)
	}
	return nil
}

// numeric decodes a JSON number that may arrive quoted.
type numeric float64

func (n *numeric) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", b, err)
	}
	*n = numeric(v)
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
