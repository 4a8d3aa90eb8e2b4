// Package logos downloads the team and competition artwork shown on the forecast site.
package logos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/htmlutil"
	"soccer-forecasts/lib/osutil"
	"soccer-forecasts/lib/textutil"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("forecasts/logos")

const Pipeline = "logos"

const (
	KindDiscover        = "discover"
	KindTeamLogo        = "team-logo"
	KindCompetitionLogo = "competition-logo"
)

// Team is a logo found on a competition's listing page.
type Team struct {
	Name        string
	LogoUrl     string
	Competition string
}

type Options struct {
	OutputDir string
	Workers   int
	// PlaceholderUrl is downloaded in place of team logos the image host fails to serve.
	PlaceholderUrl string
	ErrorSentinel  string
	LowResToken    string
	HighResToken   string
}

type RunOptions struct {
	SkipTeams        bool
	SkipCompetitions bool
}

type Downloader struct {
	http        *resty.Client
	opts        Options
	placeholder *expirable.LRU[string, []byte]
	flights     *singleflight.Group
}

// NewDownloader creates a Downloader, `http` is expected to carry the site's base url.
func NewDownloader(http *resty.Client, opts Options) Downloader {
	return Downloader{
		http:        http,
		opts:        opts,
		placeholder: expirable.NewLRU[string, []byte](4, nil, time.Hour),
		flights:     &singleflight.Group{},
	}
}

// RewriteLogoUrl swaps the low resolution size token of a logo url for the high
// resolution one. Urls without the token are returned as is.
func RewriteLogoUrl(link, lowRes, highRes string) string {
	if lowRes == "" {
		return link
	}
	return strings.ReplaceAll(link, lowRes, highRes)
}

// ParseListing extracts the team logos from the html of a competition's listing page.
// Relative image sources are resolved against `page`.
func ParseListing(page *url.URL, competition string, r io.Reader, lowRes, highRes string) ([]Team, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var teams []Team
	doc.Find("tr.team-row").Each(func(i int, row *goquery.Selection) {
		name := htmlutil.FirstChildText(row.Find("div.name"))
		src, _ := row.Find("img").First().Attr("src")
		if name == "" || strings.TrimSpace(src) == "" {
			slog.Warn(
				"team row without a name or logo, skipping",
				"competition", competition,
				"row", i,
				"name", name,
			)
			return
		}

		link, err := htmlutil.ResolveURL(page, RewriteLogoUrl(src, lowRes, highRes))
		if err != nil {
			slog.Warn("invalid logo url, skipping", "competition", competition, "name", name, "src", src, "err", err)
			return
		}
		teams = append(teams, Team{
			Name:        name,
			LogoUrl:     link,
			Competition: competition,
		})
	})
	return teams, nil
}

func (d Downloader) TeamPath(team Team) string {
	return filepath.Join(
		d.opts.OutputDir,
		"logos",
		textutil.SafeFilename(team.Competition),
		textutil.SafeFilename(team.Name)+".png",
	)
}

func (d Downloader) CompetitionPath(competition string) string {
	return filepath.Join(
		d.opts.OutputDir,
		"logos",
		"competitions",
		textutil.SafeFilename(competition)+".png",
	)
}

func ListingPath(competition string) string {
	return "/" + competition
}

func CompetitionLogoPath(competition string) string {
	return fmt.Sprintf("/images/%s-logo.png", competition)
}

func (d Downloader) get(ctx context.Context, link string) (*resty.Response, error) {
	return d.http.R().
		SetContext(ctx).
		Get(link)
}

// Discover lists the team logos of a competition.
func (d Downloader) Discover(ctx context.Context, competition string) ([]Team, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	span.SetAttributes(attribute.String("competition", competition))
	slog.InfoContext(ctx, "fetching team logos", "competition", competition)

	res, err := d.get(ctx, ListingPath(competition))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("fetch listing of %s: unexpected status %s", competition, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var page *url.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		page = res.RawResponse.Request.URL
	}
	teams, err := ParseListing(
		page,
		competition,
		bytes.NewReader(res.Body()),
		d.opts.LowResToken,
		d.opts.HighResToken,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parse listing of %s: %w", competition, err)
	}

	span.SetAttributes(attribute.Int("teams", len(teams)))
	slog.InfoContext(ctx, "finished fetching team logos", "competition", competition, "teams", len(teams))
	return teams, nil
}

// placeholderImage returns the placeholder image, fetching it at most once per hour.
func (d Downloader) placeholderImage(ctx context.Context) ([]byte, error) {
	link := d.opts.PlaceholderUrl
	if link == "" {
		return nil, errors.New("no placeholder image configured")
	}
	if body, ok := d.placeholder.Get(link); ok {
		return body, nil
	}

	v, err, _ := d.flights.Do(link, func() (any, error) {
		if body, ok := d.placeholder.Get(link); ok {
			return body, nil
		}
		res, err := d.get(ctx, link)
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, fmt.Errorf("unexpected status %s", res.Status())
		}
		d.placeholder.Add(link, res.Body())
		return res.Body(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch placeholder image: %w", err)
	}
	return v.([]byte), nil
}

// DownloadTeam saves the logo of a team. When the image host answers with an error page
// the placeholder image is saved instead.
func (d Downloader) DownloadTeam(ctx context.Context, team Team) error {
	ctx, span := tracer.Start(ctx, "DownloadTeam")
	defer span.End()

	span.SetAttributes(
		attribute.String("competition", team.Competition),
		attribute.String("team", team.Name),
		attribute.String("url", team.LogoUrl),
	)
	slog.DebugContext(ctx, "downloading logo", "competition", team.Competition, "team", team.Name)

	res, err := d.get(ctx, team.LogoUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body := res.Body()
	if d.opts.ErrorSentinel != "" && bytes.Contains(body, []byte(d.opts.ErrorSentinel)) {
		slog.DebugContext(
			ctx, "logo unavailable, using placeholder",
			"competition", team.Competition,
			"team", team.Name,
			"status", res.StatusCode(),
		)
		span.SetAttributes(attribute.Bool("placeholder", true))
		body, err = d.placeholderImage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	} else if res.IsError() {
		err := fmt.Errorf("fetch logo of %s: unexpected status %s", team.Name, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = osutil.WriteFileAtomic(d.TeamPath(team), body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// DownloadCompetition saves the logo of a competition.
func (d Downloader) DownloadCompetition(ctx context.Context, competition string) error {
	ctx, span := tracer.Start(ctx, "DownloadCompetition")
	defer span.End()

	span.SetAttributes(attribute.String("competition", competition))
	slog.InfoContext(ctx, "downloading competition logo", "competition", competition)

	res, err := d.get(ctx, CompetitionLogoPath(competition))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("fetch logo of %s: unexpected status %s", competition, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = osutil.WriteFileAtomic(d.CompetitionPath(competition), res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Dedupe drops teams that would be saved to the same file as an earlier team.
func (d Downloader) Dedupe(teams []Team) []Team {
	seen := map[string]Team{}
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		path := d.TeamPath(t)
		if first, ok := seen[path]; ok {
			if first != t {
				slog.Warn(
					"two teams map to the same logo file, keeping the first",
					"path", path,
					"kept", first.Name,
					"dropped", t.Name,
				)
			}
			continue
		}
		seen[path] = t
		out = append(out, t)
	}
	return out
}

func (d Downloader) discoverAll(ctx context.Context, competitions []string) ([]Team, batch.Summary) {
	var mu sync.Mutex
	discovered := map[string][]Team{}

	tasks := make([]batch.Task, len(competitions))
	for i, c := range competitions {
		tasks[i] = batch.Task{Kind: KindDiscover, Competition: c}
	}
	summary := batch.Run(ctx, Pipeline, d.opts.Workers, tasks, func(ctx context.Context, task batch.Task) error {
		teams, err := d.Discover(ctx, task.Competition)
		if err != nil {
			return err
		}
		mu.Lock()
		discovered[task.Competition] = teams
		mu.Unlock()
		return nil
	})

	var teams []Team
	for _, c := range competitions {
		teams = append(teams, discovered[c]...)
	}
	return d.Dedupe(teams), summary
}

// Run discovers and downloads the team logos of every competition, then downloads the
// competition logos. Every page and image is an independent task.
func (d Downloader) Run(ctx context.Context, competitions []string, opts RunOptions) batch.Summary {
	summary := batch.Summary{Pipeline: Pipeline}

	if !opts.SkipTeams {
		teams, discovery := d.discoverAll(ctx, competitions)
		summary = summary.Merge(discovery)

		byTask := make(map[batch.Task]Team, len(teams))
		tasks := make([]batch.Task, len(teams))
		for i, t := range teams {
			tasks[i] = batch.Task{Kind: KindTeamLogo, Competition: t.Competition, Item: t.Name}
			byTask[tasks[i]] = t
		}
		summary = summary.Merge(batch.Run(ctx, Pipeline, d.opts.Workers, tasks, func(ctx context.Context, task batch.Task) error {
			return d.DownloadTeam(ctx, byTask[task])
		}))
	}

	if !opts.SkipCompetitions {
		tasks := make([]batch.Task, len(competitions))
		for i, c := range competitions {
			tasks[i] = batch.Task{Kind: KindCompetitionLogo, Competition: c}
		}
		summary = summary.Merge(batch.Run(ctx, Pipeline, d.opts.Workers, tasks, func(ctx context.Context, task batch.Task) error {
			return d.DownloadCompetition(ctx, task.Competition)
		}))
	}

	return summary
}
