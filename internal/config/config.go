// Package config holds the run-time parameters of every pipeline. It is loaded once at
// process start and passed explicitly into the pipeline entry points.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"soccer-forecasts/lib/configutil"
	"soccer-forecasts/lib/telemetry"
	"soccer-forecasts/lib/textutil"
	"time"
)

const DefaultPath = "forecasts.json5"

// Duration is a time.Duration that reads from strings like "30s" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		parsed, err := time.ParseDuration(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var ms int64
	_, err := fmt.Sscan(s, &ms)
	if err != nil {
		return fmt.Errorf("invalid duration %s", s)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Duration(d).String())), nil
}

type Http struct {
	Timeout Duration `json:"timeout"`
	// RetryCount is the number of retries after a failed attempt, a negative value
	// disables retries (0 falls back to the default).
	RetryCount        int      `json:"retry_count"`
	RetryWait         Duration `json:"retry_wait"`
	RetryMaxWait      Duration `json:"retry_max_wait"`
	RequestsPerSecond float64  `json:"requests_per_second"`
	UserAgent         string   `json:"user_agent"`
	BypassCloudflare  *bool    `json:"bypass_cloudflare"`
}

type Logos struct {
	PlaceholderUrl string `json:"placeholder_url"`
	// ErrorSentinel is the marker that, found in an image body, means the image host
	// answered with an error page.
	ErrorSentinel string `json:"error_sentinel"`
	LowResToken   string `json:"low_res_token"`
	HighResToken  string `json:"high_res_token"`
}

type RunLog struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
	Disabled  bool   `json:"disabled"`
}

type Config struct {
	BaseUrl   string `json:"base_url"`
	OutputDir string `json:"output_dir"`
	// Competitions are the slugs of the tracked competitions.
	Competitions []string `json:"competitions"`
	// Seasons are the starting years the historical fetcher walks through.
	Seasons []int `json:"seasons"`
	// CurrentSeason is the starting year of the season the snapshot fetcher follows.
	CurrentSeason int              `json:"current_season"`
	Workers       int              `json:"workers"`
	Http          Http             `json:"http"`
	Logos         Logos            `json:"logos"`
	RunLog        RunLog           `json:"run_log"`
	Telemetry     telemetry.Config `json:"telemetry"`
}

// Load reads the config file at `path` (and its local override), filling every unset
// field from Defaults.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigOr(path, Defaults())
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) BypassCloudflare() bool {
	return c.Http.BypassCloudflare != nil && *c.Http.BypassCloudflare
}

// Validate rejects configurations no pipeline can run with. Unknown competition slugs are
// only warned about since the site adds competitions over time.
func (c Config) Validate() error {
	var errs []error
	if c.BaseUrl == "" {
		errs = append(errs, fmt.Errorf("base_url must be set"))
	}
	if len(c.Competitions) == 0 {
		errs = append(errs, fmt.Errorf("at least one competition must be configured"))
	}
	for _, comp := range c.Competitions {
		if comp == "" {
			errs = append(errs, fmt.Errorf("competition slugs cannot be empty"))
		}
	}
	for _, year := range c.Seasons {
		if year <= 0 {
			errs = append(errs, fmt.Errorf("invalid season %d", year))
		}
	}
	if c.CurrentSeason <= 0 {
		errs = append(errs, fmt.Errorf("invalid current_season %d", c.CurrentSeason))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// UnknownCompetitions returns the configured slugs missing from the known catalogue,
// mapped to the closest known slug ("" when nothing is close).
func (c Config) UnknownCompetitions() map[string]string {
	out := map[string]string{}
	for _, comp := range c.Competitions {
		if slices.Contains(KnownCompetitions, comp) {
			continue
		}
		suggestion, _ := textutil.Suggest(comp, KnownCompetitions, 0.85)
		out[comp] = suggestion
	}
	return out
}

// WarnUnknown logs every configured slug that is not in the known catalogue.
func (c Config) WarnUnknown() {
	for comp, suggestion := range c.UnknownCompetitions() {
		if suggestion != "" {
			slog.Warn("unknown competition", "competition", comp, "did_you_mean", suggestion)
			continue
		}
		slog.Warn("unknown competition", "competition", comp)
	}
}

// Filter narrows the competitions and seasons to the given subsets, an empty subset
// keeps everything. Entries not present in the config are an error.
func (c Config) Filter(competitions []string, seasons []int) (Config, error) {
	if len(competitions) > 0 {
		for _, comp := range competitions {
			if !slices.Contains(c.Competitions, comp) {
				if suggestion, ok := textutil.Suggest(comp, c.Competitions, 0.85); ok {
					return c, fmt.Errorf("competition %q is not configured, did you mean %q?", comp, suggestion)
				}
				return c, fmt.Errorf("competition %q is not configured", comp)
			}
		}
		c.Competitions = slices.Clone(competitions)
	}
	if len(seasons) > 0 {
		c.Seasons = slices.Clone(seasons)
	}
	return c, nil
}

const redacted = "<redacted>"

func redactHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k := range headers {
		out[k] = redacted
	}
	return out
}

// Redacted returns a copy of the config that is safe to print, credentials are masked.
func (c Config) Redacted() Config {
	if c.RunLog.AuthToken != "" {
		c.RunLog.AuthToken = redacted
	}
	c.Telemetry.Otlp.Traces.Headers = redactHeaders(c.Telemetry.Otlp.Traces.Headers)
	c.Telemetry.Otlp.Metrics.Headers = redactHeaders(c.Telemetry.Otlp.Metrics.Headers)
	return c
}
