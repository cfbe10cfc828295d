package news

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/httputil"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// DefaultQuery is the GNews search expression
const DefaultQuery = "Nifty OR Indian Stock Market"

// Headline is one article title with its publish time (zero when unknown)
type Headline struct {
	Title       string
	PublishedAt time.Time
}

// Client computes the macro news signal
// ⭐ SSOT: news HTTP calls live here only
type Client struct {
	httpClient *httputil.Client
	apiKey     string
	searchURL  string
	rssURL     string
	settings   strategyconfig.Sentiment
	now        func() time.Time
	logger     *logger.Logger
}

// NewClient creates a news client. GNews is used when an API key is set,
// otherwise the RSS feed; with neither the signal is always neutral.
func NewClient(httpClient *httputil.Client, cfg config.NewsConfig, settings strategyconfig.Sentiment, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.GNewsAPIKey,
		searchURL:  cfg.GNewsURL,
		rssURL:     cfg.RSSURL,
		settings:   settings,
		now:        time.Now,
		logger:     log,
	}
}

// WithClock replaces the wall clock
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Fetch implements contracts.SentimentSource. It never fails: any upstream
// problem yields the neutral signal.
func (c *Client) Fetch(ctx context.Context) contracts.Sentiment {
	var (
		headlines []Headline
		source    string
		err       error
	)

	switch {
	case c.apiKey != "" && c.searchURL != "":
		source = "gnews"
		headlines, err = c.fetchGNews(ctx)
	case c.rssURL != "":
		source = "rss"
		headlines, err = c.fetchRSS(ctx)
	default:
		return contracts.NeutralSentiment()
	}

	if err != nil {
		c.logger.WithError(err).WithField("source", source).Warn("News unavailable, using neutral sentiment")
		return contracts.NeutralSentiment()
	}

	s := c.Score(headlines)
	c.logger.WithFields(map[string]interface{}{
		"source":   source,
		"fetched":  len(headlines),
		"relevant": len(s.Headlines),
		"overall":  s.Overall,
		"noise":    s.Noise,
	}).Info("News sentiment computed")

	return s
}

// Score keeps recent headlines that mention a market keyword, at most
// MaxHeadlines of them, and averages their lexicon scores to two decimals.
func (c *Client) Score(headlines []Headline) contracts.Sentiment {
	cutoff := c.now().Add(-time.Duration(c.settings.LookbackHours) * time.Hour)

	var polSum, subjSum float64
	kept := make([]string, 0, c.settings.MaxHeadlines)
	for _, h := range headlines {
		if len(kept) >= c.settings.MaxHeadlines {
			break
		}
		title := strings.TrimSpace(h.Title)
		if title == "" || !c.relevant(title) {
			continue
		}
		if !h.PublishedAt.IsZero() && h.PublishedAt.Before(cutoff) {
			continue
		}
		p, s := Analyze(title)
		polSum += p
		subjSum += s
		kept = append(kept, title)
	}

	if len(kept) == 0 {
		return contracts.NeutralSentiment()
	}

	n := float64(len(kept))
	return contracts.Sentiment{
		Overall:   round2(polSum / n),
		Noise:     round2(subjSum / n),
		Headlines: kept,
	}
}

func (c *Client) relevant(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range c.settings.Keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) fetchGNews(ctx context.Context) ([]Headline, error) {
	params := url.Values{}
	params.Set("q", DefaultQuery)
	params.Set("lang", "en")
	params.Set("country", "in")
	params.Set("max", strconv.Itoa(c.settings.MaxHeadlines))
	params.Set("from", c.now().UTC().Add(-time.Duration(c.settings.LookbackHours)*time.Hour).Format("2006-01-02T15:04:05Z"))
	params.Set("apikey", c.apiKey)

	var resp gnewsResponse
	if err := c.httpClient.GetJSON(ctx, c.searchURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("gnews search: %w", err)
	}

	out := make([]Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		h := Headline{Title: a.Title}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			h.PublishedAt = t
		}
		out = append(out, h)
	}
	return out, nil
}

var pubDateLayouts = []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822}

func (c *Client) fetchRSS(ctx context.Context) ([]Headline, error) {
	body, err := c.httpClient.GetBody(ctx, c.rssURL)
	if err != nil {
		return nil, fmt.Errorf("rss feed: %w", err)
	}
	return ParseRSS(body)
}

// ParseRSS extracts item titles and publish dates from an RSS document
func ParseRSS(body []byte) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	var out []Headline
	doc.Find("item").Each(func(_ int, item *goquery.Selection) {
		title := cdata(item.Find("title").First().Text())
		if title == "" {
			return
		}
		h := Headline{Title: title}
		raw := strings.TrimSpace(item.Find("pubdate").First().Text())
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				h.PublishedAt = t
				break
			}
		}
		out = append(out, h)
	})
	return out, nil
}

func cdata(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return strings.TrimSpace(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
