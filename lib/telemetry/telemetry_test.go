package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigEnabled(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected bool
	}{
		{name: "empty", config: Config{}, expected: false},
		{
			name:     "headers only",
			config:   Config{Otlp: OtlpConfig{Traces: OtlpConnConfig{Headers: map[string]string{"x-api-key": "secret"}}}},
			expected: false,
		},
		{
			name:     "grpc traces",
			config:   Config{Otlp: OtlpConfig{Traces: OtlpConnConfig{GrpcEndpoint: "localhost:4317"}}},
			expected: true,
		},
		{
			name:     "http metrics",
			config:   Config{Otlp: OtlpConfig{Metrics: OtlpConnConfig{HttpEndpoint: "localhost:4318"}}},
			expected: true,
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, test.config.Enabled(), test.name)
	}
}

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), "forecasts-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestIsTextual(t *testing.T) {
	testCases := []struct {
		contentType string
		expected    bool
	}{
		{contentType: "text/html; charset=utf-8", expected: true},
		{contentType: "application/json", expected: true},
		{contentType: "application/xhtml+xml", expected: true},
		{contentType: "image/png", expected: false},
		{contentType: "", expected: false},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, isTextual(test.contentType), test.contentType)
	}
}
