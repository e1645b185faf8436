package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

const websearchDefaultBaseURL = "https://duckduckgo.com/html/"

func WebSearchSchema() *capability.Schema {
	return &capability.Schema{
		ID:       "websearch",
		Name:     "Web Search",
		Category: capability.CategoryProductivity,
		ConfigFields: []capability.ConfigField{
			{Key: "base_url", Type: capability.FieldString, Default: websearchDefaultBaseURL},
			{Key: "user_agent", Type: capability.FieldString, Default: "openassistant/1.0"},
		},
		Skills: []capability.Skill{
			{
				ID:          "web_search",
				Name:        "Web Search",
				Description: "Search the web and return a short list of results.",
				Params: []capability.Param{
					{Name: "q", Type: "string", Required: true, Description: "Search query."},
					{Name: "max_results", Type: "number", Description: "Max results (default 5)."},
				},
			},
		},
	}
}

// WebSearchIntegration scrapes the DuckDuckGo HTML endpoint. No key, no
// session; connect only checks the endpoint answers.
type WebSearchIntegration struct {
	*integration.Base

	baseURL   string
	userAgent string
	http      *http.Client
}

func NewWebSearch(cfg map[string]any, timeout time.Duration) *WebSearchIntegration {
	it := &WebSearchIntegration{
		baseURL:   stringConfig(cfg, "base_url"),
		userAgent: stringConfig(cfg, "user_agent"),
		http:      newHTTPClient(timeout),
	}
	if it.baseURL == "" {
		it.baseURL = websearchDefaultBaseURL
	}
	if it.userAgent == "" {
		it.userAgent = "openassistant/1.0"
	}
	it.Base = integration.NewBase(WebSearchSchema(), it.probe)
	it.Handle("web_search", it.search)
	return it
}

func (it *WebSearchIntegration) probe(ctx context.Context) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeoutOf(it.http))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, it.baseURL, nil)
	if err != nil {
		return "", integration.Connectf("websearch", err, "invalid base_url")
	}
	req.Header.Set("User-Agent", it.userAgent)

	resp, err := it.http.Do(req)
	if err != nil {
		return "", integration.Connectf("websearch", err, "search endpoint unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode >= 500 {
		return "", integration.Connectf("websearch", nil, "search endpoint unavailable (http %d)", resp.StatusCode)
	}
	return "", nil
}

type webSearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (it *WebSearchIntegration) search(ctx context.Context, args map[string]any) integration.Result {
	q := stringParam(args, "q")
	if q == "" {
		return integration.Failf("Missing required parameter: q")
	}
	maxResults := intParam(args, "max_results", 5, 20)

	base, err := url.Parse(it.baseURL)
	if err != nil {
		return integration.Failf("Invalid base_url: %v", err)
	}
	u := *base
	qs := u.Query()
	qs.Set("q", q)
	u.RawQuery = qs.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, timeoutOf(it.http))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return integration.Failf("Failed to build request: %v", err)
	}
	req.Header.Set("User-Agent", it.userAgent)

	resp, err := it.http.Do(req)
	if err != nil {
		return integration.Failf("Web search failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return integration.Failf("Web search failed: http %d: %s", resp.StatusCode, string(bytes.ToValidUTF8(body, []byte("[non-utf8]"))))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return integration.Failf("Failed to read search response: %v", err)
	}

	results, err := parseDuckDuckGoHTML(body, maxResults)
	if err != nil {
		return integration.Failf("Invalid search response: %v", err)
	}
	if len(results) == 0 {
		return integration.Text("No results")
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s (%s)", r.Title, r.URL))
	}
	return integration.TextData(strings.Join(lines, "\n"), results)
}

func parseDuckDuckGoHTML(htmlBytes []byte, maxResults int) ([]webSearchResult, error) {
	root, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, err
	}

	var out []webSearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || len(out) >= maxResults {
			return
		}
		// Result title links: <a class="result__a" href="...">Title</a>
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			title := strings.TrimSpace(textContent(n))
			if href != "" && title != "" {
				out = append(out, webSearchResult{
					Title: title,
					URL:   normalizeDuckDuckGoResultURL(href),
				})
			}
		}
		for c := n.FirstChild; c != nil && len(out) < maxResults; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return out, nil
}

func normalizeDuckDuckGoResultURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	// Often: /l/?uddg=<encoded>
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.Path == "/l/" {
		if uddg := u.Query().Get("uddg"); uddg != "" {
			if decoded, err := url.QueryUnescape(uddg); err == nil && decoded != "" {
				return decoded
			}
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func hasClass(n *html.Node, want string) bool {
	class := attr(n, "class")
	for _, part := range strings.Fields(class) {
		if part == want {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x == nil {
			return
		}
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
