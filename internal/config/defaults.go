package config

import "time"

// KnownCompetitions are the competitions the site publishes club forecasts for.
var KnownCompetitions = []string{
	"champions-league",
	"europa-league",
	"bundesliga-austria",
	"first-division-a",
	"superligaen",
	"premier-league",
	"championship",
	"league-one",
	"league-two",
	"ligue-1",
	"ligue-2",
	"bundesliga",
	"bundesliga-2",
	"super-league-greece",
	"serie-a",
	"serie-b",
	"eredivisie",
	"eliteserien",
	"primeira-liga",
	"premier-league-russia",
	"premiership",
	"la-liga",
	"la-liga-2",
	"allsvenskan",
	"super-league",
	"super-lig",
}

func Defaults() Config {
	bypass := true
	return Config{
		BaseUrl:       "https://projects.fivethirtyeight.com/soccer-predictions",
		OutputDir:     ".",
		Competitions:  append([]string(nil), KnownCompetitions...),
		Seasons:       []int{2016, 2017, 2018},
		CurrentSeason: 2018,
		Workers:       4,
		Http: Http{
			Timeout:          Duration(time.Second * 30),
			RetryCount:       2,
			RetryWait:        Duration(time.Millisecond * 500),
			RetryMaxWait:     Duration(time.Second * 5),
			BypassCloudflare: &bypass,
		},
		Logos: Logos{
			PlaceholderUrl: "https://secure.espn.com/combiner/i?img=/i/teamlogos/soccer/500/default-team-logo-500.png&w=512",
			ErrorSentinel:  "error",
			LowResToken:    "&w=56",
			HighResToken:   "&w=512",
		},
		RunLog: RunLog{
			File: ".forecasts/runs.db",
		},
	}
}
