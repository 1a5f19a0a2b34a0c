package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		input    string
		expected float64
	}{
		{"comma decimal", "41,50", 41.5},
		{"dot decimal", "41.50", 41.5},
		{"currency sign", "41,50 ₴", 41.5},
		{"european thousands", "1.234,56", 1234.56},
		{"english thousands", "1,234.56", 1234.56},
		{"spaced thousands", "1 234,56", 1234.56},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			v, err := parseNumber(testCase.input)
			require.NoError(t, err)

			assert.InDelta(t, testCase.expected, v, 1e-9)
		})
	}

	t.Run("no digits", func(t *testing.T) {
		t.Parallel()

		_, err := parseNumber("n/a")
		assert.ErrorIs(t, err, errInvalidRate)
	})

	t.Run("zero", func(t *testing.T) {
		t.Parallel()

		_, err := parseNumber("0,00")
		assert.ErrorIs(t, err, errInvalidRate)
	})
}

func TestProvider_Rate(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<div class="rates">
			<span class="rate" content="41.4512">41,45</span>
			<span class="rate">40,00</span>
		</div>
		<div class="text-only"><b>42,10 ₴</b></div>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	t.Run("content attribute", func(t *testing.T) {
		t.Parallel()

		rate, err := NewProvider(srv.URL, ".rates .rate", time.Second).Rate(context.Background())
		require.NoError(t, err)

		assert.InDelta(t, 41.4512, rate, 1e-9)
	})

	t.Run("element text", func(t *testing.T) {
		t.Parallel()

		rate, err := NewProvider(srv.URL, ".text-only b", time.Second).Rate(context.Background())
		require.NoError(t, err)

		assert.InDelta(t, 42.1, rate, 1e-9)
	})

	t.Run("missing element", func(t *testing.T) {
		t.Parallel()

		_, err := NewProvider(srv.URL, "#nope", time.Second).Rate(context.Background())
		assert.ErrorIs(t, err, errMissingSelector)
	})
}
