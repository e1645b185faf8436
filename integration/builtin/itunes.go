package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

const itunesDefaultBaseURL = "https://itunes.apple.com"

func ITunesSchema() *capability.Schema {
	return &capability.Schema{
		ID:       "itunes",
		Name:     "iTunes Search",
		Category: capability.CategoryMedia,
		ConfigFields: []capability.ConfigField{
			{Key: "base_url", Type: capability.FieldString, Default: itunesDefaultBaseURL},
			{Key: "country", Type: capability.FieldString, Default: "US"},
		},
		Skills: []capability.Skill{
			{
				ID:          "itunes_search_media",
				Name:        "Search Media",
				Description: "Search the iTunes catalog for music, podcasts, movies and more.",
				Params: []capability.Param{
					{Name: "term", Type: "string", Required: true, Description: "Search term."},
					{Name: "media", Type: "string", Description: "Media kind (music, podcast, movie, ...)."},
					{Name: "limit", Type: "number", Description: "Max results (default 5)."},
				},
			},
		},
	}
}

// ITunesIntegration uses the keyless iTunes Search API. Connect probes the
// search endpoint to confirm reachability and response shape.
type ITunesIntegration struct {
	*integration.Base

	baseURL string
	country string
	http    *http.Client
}

func NewITunes(cfg map[string]any, timeout time.Duration) *ITunesIntegration {
	it := &ITunesIntegration{
		baseURL: strings.TrimRight(stringConfig(cfg, "base_url"), "/"),
		country: stringConfig(cfg, "country"),
		http:    newHTTPClient(timeout),
	}
	if it.baseURL == "" {
		it.baseURL = itunesDefaultBaseURL
	}
	if it.country == "" {
		it.country = "US"
	}
	it.Base = integration.NewBase(ITunesSchema(), it.probe)
	it.Handle("itunes_search_media", it.search)
	return it
}

func (it *ITunesIntegration) probe(ctx context.Context) (string, error) {
	var out map[string]any
	u := fmt.Sprintf("%s/search?term=ping&limit=1", it.baseURL)
	if err := httpJSON(ctx, it.http, http.MethodGet, u, nil, nil, &out); err != nil {
		return "", integration.Connectf("itunes", err, "upstream unreachable")
	}
	if _, ok := out["resultCount"]; !ok {
		return "", integration.Connectf("itunes", nil, "invalid probe response: missing resultCount")
	}
	return "", nil
}

func (it *ITunesIntegration) search(ctx context.Context, args map[string]any) integration.Result {
	term := stringParam(args, "term")
	if term == "" {
		return integration.Failf("Missing required parameter: term")
	}
	limit := intParam(args, "limit", 5, 50)

	q := url.Values{
		"term":    {term},
		"limit":   {fmt.Sprint(limit)},
		"country": {it.country},
	}
	if media := stringParam(args, "media"); media != "" {
		q.Set("media", media)
	}

	var out struct {
		ResultCount *int `json:"resultCount"`
		Results     []struct {
			TrackName      string `json:"trackName"`
			ArtistName     string `json:"artistName"`
			CollectionName string `json:"collectionName"`
			Kind           string `json:"kind"`
			TrackViewURL   string `json:"trackViewUrl"`
		} `json:"results"`
	}
	if err := httpJSON(ctx, it.http, http.MethodGet, it.baseURL+"/search?"+q.Encode(), nil, nil, &out); err != nil {
		return integration.Failf("iTunes search failed: %v", err)
	}
	if out.ResultCount == nil {
		return integration.Failf("Invalid response from iTunes: missing resultCount")
	}
	if *out.ResultCount == 0 || len(out.Results) == 0 {
		return integration.Text("No results")
	}

	lines := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		title := r.TrackName
		if title == "" {
			title = r.CollectionName
		}
		if r.ArtistName != "" {
			lines = append(lines, fmt.Sprintf("%s by %s (%s)", title, r.ArtistName, r.Kind))
		} else {
			lines = append(lines, title)
		}
	}
	return integration.TextData(strings.Join(lines, "\n"), out.Results)
}
