package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// browserUserAgent is sent to exchanges that reject non-browser clients
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// flexFloat is a JSON number that exchanges may also encode as a string.
// Unparsable values decode as 0, so the order is dropped on validation
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = 0

	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil //nolint:nilerr // malformed values are zeroed
	}

	*f = flexFloat(v)

	return nil
}

// flexString is a JSON string that exchanges may also encode as a number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""

		return nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		*f = flexString(unquoted)

		return nil
	}

	*f = flexString(s)

	return nil
}

// decodeList decodes the raw list field of a response.
// Anything that is not an array of items yields no items
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	return items
}

// doJSON executes the request and decodes the JSON response into dst
func doJSON(client *http.Client, req *http.Request, dst any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to execute %s request: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	return nil
}

// newJSONRequest creates a request carrying the JSON-encoded body
func newJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("unable to create %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// paymentNames maps shared payment method names to exchange-specific ones
type paymentNames map[string]string

// toExchange translates shared names, passing unknown names through
func (p paymentNames) toExchange(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}

	translated := make([]string, 0, len(methods))
	for _, method := range methods {
		if name, ok := p[method]; ok {
			translated = append(translated, name)

			continue
		}

		translated = append(translated, method)
	}

	return translated
}

// toShared translates exchange names back, passing unknown names through
func (p paymentNames) toShared(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}

	translated := make([]string, 0, len(methods))
	for _, method := range methods {
		shared := method

		for sharedName, exchangeName := range p {
			if exchangeName == method {
				shared = sharedName

				break
			}
		}

		translated = append(translated, shared)
	}

	return translated
}

// pageWindow returns the [start, end) bounds of a page over n items
func pageWindow(n, page, size int) (int, int) {
	start := (page - 1) * size
	if start >= n {
		return n, n
	}

	end := start + size
	if end > n {
		end = n
	}

	return start, end
}

func formatAmount(amount *float64) string {
	if amount == nil {
		return ""
	}

	return strconv.FormatFloat(*amount, 'f', -1, 64)
}

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
	}
}
