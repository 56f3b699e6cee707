package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/httpx"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type Result struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Href  string `json:"href"`
}

type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

type duckDuckGo struct {
	log       *logger.Logger
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewDuckDuckGo(log *logger.Logger, cfg Config) (Searcher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "https://html.duckduckgo.com/html/"
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; trit-recommender/1.0)"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 2
	}
	return &duckDuckGo{
		log:       log.With("service", "DuckDuckGoSearch"),
		baseURL:   base,
		userAgent: ua,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

func (d *duckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := d.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := d.http.Do(req)
	if err != nil {
		observability.Current().IncUpstream("websearch", "error")
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.Current().IncUpstream("websearch", "error")
		return nil, &httpx.StatusError{Service: "duckduckgo", StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		observability.Current().IncUpstream("websearch", "error")
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}
	observability.Current().IncUpstream("websearch", "ok")

	results := ParseResults(doc, maxResults)
	d.log.Debug("web search complete", "query", query, "results", len(results))
	return results, nil
}

// ParseResults extracts up to max organic results from a DuckDuckGo HTML page.
func ParseResults(doc *goquery.Document, max int) []Result {
	out := make([]Result, 0, max)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find(".result__a").First()
		title := collapse(link.Text())
		body := collapse(s.Find(".result__snippet").First().Text())
		if title == "" && body == "" {
			return true
		}
		href, _ := link.Attr("href")
		out = append(out, Result{Title: title, Body: body, Href: resolveHref(href)})
		return len(out) < max
	})
	return out
}

// resolveHref unwraps DuckDuckGo's "/l/?uddg=" redirect links.
func resolveHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
