// Package reference scrapes a reference exchange rate from an HTML page
package reference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	errInvalidRate     = errors.New("invalid rate")
	errMissingSelector = errors.New("missing rate element")
)

// Provider is the reference rate scraping provider
type Provider struct {
	client   *http.Client
	url      string
	selector string
}

// NewProvider creates a new reference rate provider that reads the rate
// from the first element matching the CSS selector on the page
func NewProvider(url, selector string, timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:      url,
		selector: selector,
	}
}

// Rate fetches the page and parses the current rate
func (p *Provider) Rate(ctx context.Context) (float64, error) {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("unable to create new GET request: %w", err)
	}

	// Execute the request
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("unable to construct query doc: %w", err)
	}

	sel := doc.Find(p.selector).First()
	if sel.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", errMissingSelector, p.selector)
	}

	// Prefer the machine-readable value, if any
	txt, ok := sel.Attr("content")
	if !ok || strings.TrimSpace(txt) == "" {
		txt = sel.Text()
	}

	rate, err := parseNumber(txt)
	if err != nil {
		return 0, err
	}

	return math.Round(rate*1e4) / 1e4, nil
}

// parseNumber parses a rendered rate, such as "41,50 ₴" or "1 234.56".
// When both separators are present, the last one is the decimal separator
func parseNumber(s string) (float64, error) {
	var b strings.Builder

	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, errInvalidRate
	}

	var (
		lastDot   = strings.LastIndex(cleaned, ".")
		lastComma = strings.LastIndex(cleaned, ",")
	)

	switch {
	case lastDot != -1 && lastComma != -1 && lastComma > lastDot:
		// "1.234,56" -> "1234.56"
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot != -1 && lastComma != -1:
		// "1,234.56" -> "1234.56"
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate %q: %w", s, err)
	}

	if f <= 0 {
		return 0, errInvalidRate
	}

	return f, nil
}
