package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

const (
	spotifyDefaultAccountsURL = "https://accounts.spotify.com"
	spotifyDefaultAPIURL      = "https://api.spotify.com"
)

func SpotifySchema() *capability.Schema {
	return &capability.Schema{
		ID:       "spotify",
		Name:     "Spotify",
		Category: capability.CategoryMusic,
		ConfigFields: []capability.ConfigField{
			{Key: "client_id", Type: capability.FieldString, Required: true},
			{Key: "client_secret", Type: capability.FieldSecret, Required: true},
			{Key: "accounts_url", Type: capability.FieldString, Default: spotifyDefaultAccountsURL},
			{Key: "api_url", Type: capability.FieldString, Default: spotifyDefaultAPIURL},
		},
		Skills: []capability.Skill{
			{
				ID:          "spotify_search_tracks",
				Name:        "Search Tracks",
				Description: "Search Spotify's track catalog.",
				Params: []capability.Param{
					{Name: "q", Type: "string", Required: true, Description: "Search query."},
					{Name: "limit", Type: "number", Description: "Max results (default 5)."},
				},
			},
			{
				ID:          "spotify_search_artists",
				Name:        "Search Artists",
				Description: "Search Spotify's artist catalog.",
				Params: []capability.Param{
					{Name: "q", Type: "string", Required: true, Description: "Search query."},
					{Name: "limit", Type: "number", Description: "Max results (default 5)."},
				},
			},
		},
	}
}

// SpotifyIntegration authenticates via the client-credentials token
// exchange on connect and holds the bearer token until disconnect.
type SpotifyIntegration struct {
	*integration.Base

	clientID     string
	clientSecret string
	accountsURL  string
	apiURL       string
	http         *http.Client
}

func NewSpotify(cfg map[string]any, timeout time.Duration) *SpotifyIntegration {
	it := &SpotifyIntegration{
		clientID:     stringConfig(cfg, "client_id"),
		clientSecret: stringConfig(cfg, "client_secret"),
		accountsURL:  strings.TrimRight(stringConfig(cfg, "accounts_url"), "/"),
		apiURL:       strings.TrimRight(stringConfig(cfg, "api_url"), "/"),
		http:         newHTTPClient(timeout),
	}
	if it.accountsURL == "" {
		it.accountsURL = spotifyDefaultAccountsURL
	}
	if it.apiURL == "" {
		it.apiURL = spotifyDefaultAPIURL
	}
	it.Base = integration.NewBase(SpotifySchema(), it.exchangeToken)
	it.Handle("spotify_search_tracks", it.searchKind("track"))
	it.Handle("spotify_search_artists", it.searchKind("artist"))
	return it
}

// exchangeToken runs the OAuth client-credentials flow and returns the
// session bearer token released on disconnect.
func (it *SpotifyIntegration) exchangeToken(ctx context.Context) (string, error) {
	if it.clientID == "" || it.clientSecret == "" {
		return "", integration.Connectf("spotify", nil, "missing client credentials")
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	reqCtx, cancel := context.WithTimeout(ctx, timeoutOf(it.http))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, it.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", integration.Connectf("spotify", err, "build token request")
	}
	req.SetBasicAuth(it.clientID, it.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := it.http.Do(req)
	if err != nil {
		return "", integration.Connectf("spotify", err, "accounts host unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return "", integration.Connectf("spotify", err, "read token response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", integration.Connectf("spotify", nil, "token exchange rejected (http %d)", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", integration.Connectf("spotify", err, "invalid token response")
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", integration.Connectf("spotify", nil, "invalid token response: missing access_token")
	}
	return out.AccessToken, nil
}

type spotifyItem struct {
	Name string `json:"name"`
	Meta string `json:"meta,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (it *SpotifyIntegration) searchKind(kind string) integration.HandlerFunc {
	return func(ctx context.Context, args map[string]any) integration.Result {
		q := stringParam(args, "q")
		if q == "" {
			return integration.Failf("Missing required parameter: q")
		}
		limit := intParam(args, "limit", 5, 50)

		u := fmt.Sprintf("%s/v1/search?q=%s&type=%s&limit=%d", it.apiURL, url.QueryEscape(q), kind, limit)
		headers := map[string]string{"Authorization": "Bearer " + it.Token()}

		var out struct {
			Tracks *struct {
				Items []struct {
					Name    string `json:"name"`
					Artists []struct {
						Name string `json:"name"`
					} `json:"artists"`
					ExternalURLs map[string]string `json:"external_urls"`
				} `json:"items"`
			} `json:"tracks"`
			Artists *struct {
				Items []struct {
					Name         string            `json:"name"`
					ExternalURLs map[string]string `json:"external_urls"`
				} `json:"items"`
			} `json:"artists"`
		}
		if err := httpJSON(ctx, it.http, http.MethodGet, u, headers, nil, &out); err != nil {
			return integration.Failf("Spotify search failed: %v", err)
		}

		var items []spotifyItem
		switch kind {
		case "track":
			if out.Tracks == nil {
				return integration.Failf("Invalid response from Spotify: missing tracks")
			}
			for _, t := range out.Tracks.Items {
				names := make([]string, 0, len(t.Artists))
				for _, a := range t.Artists {
					names = append(names, a.Name)
				}
				items = append(items, spotifyItem{Name: t.Name, Meta: strings.Join(names, ", "), URL: t.ExternalURLs["spotify"]})
			}
		case "artist":
			if out.Artists == nil {
				return integration.Failf("Invalid response from Spotify: missing artists")
			}
			for _, a := range out.Artists.Items {
				items = append(items, spotifyItem{Name: a.Name, URL: a.ExternalURLs["spotify"]})
			}
		}

		if len(items) == 0 {
			return integration.Text("No results")
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			if item.Meta != "" {
				lines = append(lines, fmt.Sprintf("%s - %s", item.Name, item.Meta))
			} else {
				lines = append(lines, item.Name)
			}
		}
		return integration.TextData(strings.Join(lines, "\n"), items)
	}
}
