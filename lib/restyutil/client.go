package restyutil

import (
	"net/http"
	"soccer-forecasts/lib/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// BaseUrl is prepended to relative request urls, absolute urls are left alone.
	BaseUrl string
	Timeout time.Duration
	// RetryCount is the number of retries after the first attempt.
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RequestsPerSecond paces outgoing requests across the whole client, 0 disables pacing.
	RequestsPerSecond float64
	UserAgent         string
	BypassCloudflare  bool
	// TracerName names the tracer HTTP spans are recorded under.
	TracerName string
	// Output receives full request/response dumps when debug logging is enabled, can be nil.
	Output InstrumentOutput
}

// RetryableResponse reports whether a request should be attempted again: transport
// errors, rate limiting and server errors are retried, everything else is final.
func RetryableResponse(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if res == nil {
		return false
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

// NewClient creates the resty client every fetcher in this module shares its
// transport policy with.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	if opts.RetryCount > 0 {
		client.SetRetryCount(opts.RetryCount)
		if opts.RetryWait > 0 {
			client.SetRetryWaitTime(opts.RetryWait)
		}
		if opts.RetryMaxWait > 0 {
			client.SetRetryMaxWaitTime(opts.RetryMaxWait)
		}
		client.AddRetryCondition(RetryableResponse)
	}

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "forecasts/http"
	}
	telemetry.InstrumentResty(client, tracerName)
	InstrumentClient(client, opts.Output)

	return client
}
