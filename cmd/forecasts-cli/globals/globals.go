package globals

import (
	"context"
	"soccer-forecasts/internal/config"

	"github.com/go-resty/resty/v2"
)

type keyType int

const key keyType = 0

// Value holds what every command shares once the root command is done setting up.
type Value struct {
	Config config.Config
	Http   *resty.Client
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}
