package alphavantage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/guttosm/quotepulse/internal/alphavantage"
	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/quotes"
)

const dailyJSON = `{
  "Meta Data": {
    "1. Information": "Daily Prices (open, high, low, close) and Volumes",
    "2. Symbol": "AAPL",
    "3. Last Refreshed": "2023-01-10"
  },
  "Time Series (Daily)": {
    "2023-01-09": {"1. open": "128.0", "2. high": "129.5", "3. low": "127.0", "4. close": "129.0", "5. volume": "900000"},
    "2023-01-10": {"1. open": "130.0", "2. high": "131.0", "3. low": "129.0", "4. close": "130.5", "5. volume": "1000000", "6. extra": "ignored"},
    "2023-01-06": {"1. open": "126.0", "2. high": "127.5", "3. low": "125.0", "4. close": "127.0", "5. volume": "800000"}
  }
}`

const dailyCSV = "timestamp,open,high,low,close,volume\r\n" +
	"2023-01-10,130.0,131.0,129.0,130.5,1000000\r\n" +
	"2023-01-09,128.0,129.5,127.0,129.0,900000\r\n" +
	"2023-01-06,126.0,127.5,125.0,127.0,800000\r\n"

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func newMockedClient(t *testing.T, fn func(*http.Request) (*http.Response, error), opts ...alphavantage.ClientOption) *alphavantage.Client {
	t.Helper()
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).DoAndReturn(fn).Times(1)
	return alphavantage.NewClient(append([]alphavantage.ClientOption{alphavantage.WithHTTPClient(httpClient)}, opts...)...)
}

func TestDailySeries_RequestShape(t *testing.T) {
	t.Parallel()

	// Arrange: assert on the outgoing request and return a valid payload
	client := newMockedClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, req.Method)
		require.True(t, strings.HasPrefix(req.URL.String(), "http://localhost:9999/query"), req.URL.String())
		q := req.URL.Query()
		require.Equal(t, "TIME_SERIES_DAILY", q.Get("function"))
		require.Equal(t, "AAPL", q.Get("symbol"))
		require.Equal(t, "compact", q.Get("outputsize"))
		require.Equal(t, "json", q.Get("datatype"))
		require.Equal(t, "secret", q.Get("apikey"))
		require.NotEmpty(t, req.Header.Get("User-Agent"))
		return respond(http.StatusOK, dailyJSON)(req)
	}, alphavantage.WithBaseURL("http://localhost:9999/query"), alphavantage.WithOutputSize("compact"))

	// Act
	s, err := client.DailySeries(t.Context(), "AAPL", "secret")

	// Assert: sorted most recent first, every field parsed
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	require.Equal(t, models.Observation{
		Date:   time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		Open:   130.0,
		High:   131.0,
		Low:    129.0,
		Close:  130.5,
		Volume: 1000000,
	}, s.Observations[0])
	require.Equal(t, "2023-01-09", s.Observations[1].Date.Format(models.DateLayout))
	require.Equal(t, "2023-01-06", s.Observations[2].Date.Format(models.DateLayout))
}

func TestDailySeries_CSVMatchesJSON(t *testing.T) {
	t.Parallel()

	jsonClient := newMockedClient(t, respond(http.StatusOK, dailyJSON))
	csvClient := newMockedClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "csv", req.URL.Query().Get("datatype"))
		return respond(http.StatusOK, dailyCSV)(req)
	}, alphavantage.WithDataType("csv"))

	fromJSON, err := jsonClient.DailySeries(t.Context(), "AAPL", "k")
	require.NoError(t, err)
	fromCSV, err := csvClient.DailySeries(t.Context(), "AAPL", "k")
	require.NoError(t, err)
	require.Equal(t, fromJSON, fromCSV)
}

func TestDailySeries_ErrorKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		body     string
		dataType string
		kind     error
		date     string
	}{
		{
			name:   "unknown symbol",
			status: http.StatusOK,
			body:   `{"Error Message": "Invalid API call. Please retry or visit the documentation (https://www.alphavantage.co/documentation/) for TIME_SERIES_DAILY."}`,
			kind:   quotes.ErrSymbolNotFound,
		},
		{
			name:   "empty body",
			status: http.StatusOK,
			body:   "  \n",
			kind:   quotes.ErrSymbolNotFound,
		},
		{
			name:   "empty object",
			status: http.StatusOK,
			body:   `{}`,
			kind:   quotes.ErrSymbolNotFound,
		},
		{
			name:   "call frequency note",
			status: http.StatusOK,
			body:   `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute and 500 calls per day."}`,
			kind:   quotes.ErrRateLimited,
		},
		{
			name:   "daily rate limit information",
			status: http.StatusOK,
			body:   `{"Information": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`,
			kind:   quotes.ErrRateLimited,
		},
		{
			name:   "http 429",
			status: http.StatusTooManyRequests,
			body:   ``,
			kind:   quotes.ErrRateLimited,
		},
		{
			name:   "invalid key information",
			status: http.StatusOK,
			body:   `{"Information": "the parameter apikey is invalid or missing."}`,
			kind:   quotes.ErrProvider,
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `oops`,
			kind:   quotes.ErrProvider,
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": `,
			kind:   quotes.ErrMalformedData,
		},
		{
			name:   "bad close",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": {"2023-01-10": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "abc", "5. volume": "1"}}}`,
			kind:   quotes.ErrMalformedData,
			date:   "2023-01-10",
		},
		{
			name:   "missing volume",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": {"2023-01-11": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1"}}}`,
			kind:   quotes.ErrMalformedData,
			date:   "2023-01-11",
		},
		{
			name:   "negative volume",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": {"2023-01-12": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "-3"}}}`,
			kind:   quotes.ErrMalformedData,
			date:   "2023-01-12",
		},
		{
			name:   "fractional volume",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": {"2023-01-12": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1.5"}}}`,
			kind:   quotes.ErrMalformedData,
			date:   "2023-01-12",
		},
		{
			name:   "bad date key",
			status: http.StatusOK,
			body:   `{"Time Series (Daily)": {"10/01/2023": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`,
			kind:   quotes.ErrMalformedData,
			date:   "10/01/2023",
		},
		{
			name:     "csv bad header",
			status:   http.StatusOK,
			body:     "date,open,high,low,close,volume\n2023-01-10,1,1,1,1,1\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
		},
		{
			name:     "csv bad row",
			status:   http.StatusOK,
			body:     "timestamp,open,high,low,close,volume\n2023-01-10,1,1,x,1,1\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
			date:     "2023-01-10",
		},
		{
			name:     "csv NaN close",
			status:   http.StatusOK,
			body:     "timestamp,open,high,low,close,volume\n2023-01-05,1,1,1,NaN,1\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
			date:     "2023-01-05",
		},
		{
			name:     "csv infinite open",
			status:   http.StatusOK,
			body:     "timestamp,open,high,low,close,volume\n2023-01-06,Inf,1,1,1,1\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
			date:     "2023-01-06",
		},
		{
			name:     "csv short row",
			status:   http.StatusOK,
			body:     "timestamp,open,high,low,close,volume\n2023-01-10,1,1\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
			date:     "2023-01-10",
		},
		{
			name:     "csv duplicate date",
			status:   http.StatusOK,
			body:     "timestamp,open,high,low,close,volume\n2023-01-10,1,1,1,1,1\n2023-01-10,2,2,2,2,2\n",
			dataType: "csv",
			kind:     quotes.ErrMalformedData,
			date:     "2023-01-10",
		},
		{
			name:     "csv request answered with json error",
			status:   http.StatusOK,
			body:     `{"Error Message": "Invalid API call."}`,
			dataType: "csv",
			kind:     quotes.ErrSymbolNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newMockedClient(t, respond(tc.status, tc.body), alphavantage.WithDataType(tc.dataType))
			_, err := client.DailySeries(t.Context(), "AAPL", "k")
			require.ErrorIs(t, err, tc.kind)

			var qe *quotes.Error
			require.ErrorAs(t, err, &qe)
			require.Equal(t, "AAPL", qe.Symbol)
			if tc.date != "" {
				require.Equal(t, tc.date, qe.Date)
			}
		})
	}
}

func TestDailySeries_EmptyTimeSeries(t *testing.T) {
	t.Parallel()

	client := newMockedClient(t, respond(http.StatusOK, `{"Meta Data": {}, "Time Series (Daily)": {}}`))
	s, err := client.DailySeries(t.Context(), "AAPL", "k")
	require.NoError(t, err)
	require.Zero(t, s.Len())
}

func TestDailySeries_NumericFields(t *testing.T) {
	t.Parallel()

	client := newMockedClient(t, respond(http.StatusOK,
		`{"Time Series (Daily)": {"2023-01-10": {"1. open": 130, "2. high": 131, "3. low": 129, "4. close": 130.5, "5. volume": 1000000}}}`))
	s, err := client.DailySeries(t.Context(), "AAPL", "k")
	require.NoError(t, err)
	require.Equal(t, 130.5, s.Observations[0].Close)
	require.EqualValues(t, 1000000, s.Observations[0].Volume)
}

func TestDailySeries_TransportFailure(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	client := newMockedClient(t, func(*http.Request) (*http.Response, error) {
		return nil, dialErr
	})
	_, err := client.DailySeries(t.Context(), "AAPL", "k")
	require.ErrorIs(t, err, quotes.ErrNetwork)
	require.ErrorIs(t, err, dialErr)
}

func TestDailySeries_TimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := alphavantage.NewClient(
		alphavantage.WithBaseURL(srv.URL),
		alphavantage.WithHTTPClient(alphavantage.NewHTTPClient(50*time.Millisecond)),
	)
	_, err := client.DailySeries(context.Background(), "AAPL", "topsecret")
	require.ErrorIs(t, err, quotes.ErrNetwork)
	require.NotContains(t, err.Error(), "topsecret")
}

func TestDailySeries_ThroughHTTPServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "AAPL" {
			_, _ = w.Write([]byte(`{"Error Message": "Invalid API call."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dailyJSON))
	}))
	t.Cleanup(srv.Close)

	client := alphavantage.NewClient(alphavantage.WithBaseURL(srv.URL))
	s, err := client.DailySeries(context.Background(), "AAPL", "k")
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	_, err = client.DailySeries(context.Background(), "ZZZZ", "k")
	require.ErrorIs(t, err, quotes.ErrSymbolNotFound)
}
