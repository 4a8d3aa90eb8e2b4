package forecasts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"soccer-forecasts/internal/assert"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("forecasts/forecasts")

// ErrNotFound is returned when the site has no forecast for a competition in a season.
var ErrNotFound = errors.New("forecast not found")

// Path returns the location of a forecast payload relative to the site's base url.
func Path(year int, competition string) string {
	return fmt.Sprintf("/forecasts/%d_%s_forecast.json", year, competition)
}

// Client fetches raw forecast payloads. The resty client is expected to carry the base url
// and the transport policy (timeouts, retries).
type Client struct {
	http *resty.Client
}

func NewClient(http *resty.Client) Client {
	assert.NotNil(http)
	return Client{http: http}
}

// Fetch returns the forecast payload of `competition` for the season starting in `year`.
func (c Client) Fetch(ctx context.Context, year int, competition string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("competition", competition),
		attribute.Int("year", year),
	)

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		Get(Path(year, competition))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if res.StatusCode() == http.StatusNotFound {
		span.SetAttributes(attribute.Bool("not_found", true))
		return nil, fmt.Errorf("%s %d: %w", competition, year, ErrNotFound)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch forecast %s %d: unexpected status %s", competition, year, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return res.Body(), nil
}
