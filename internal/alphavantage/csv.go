package alphavantage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/quotes"
)

// expectedHeaders enforces the column layout of datatype=csv responses.
var expectedHeaders = []string{"timestamp", "open", "high", "low", "close", "volume"}

// decodeCSV parses a datatype=csv response. The header must match
// expectedHeaders exactly; any row that does not parse fails the whole
// response.
func decodeCSV(symbol string, body []byte) (models.Series, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1 // checked explicitly per line
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Msg: "read header", Err: err}
	}
	if len(header) != len(expectedHeaders) {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol,
			Msg: fmt.Sprintf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))}
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != expectedHeaders[i] {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol,
				Msg: fmt.Sprintf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)}
		}
	}

	var obs []models.Observation
	lineNumber := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol,
				Msg: fmt.Sprintf("read line after %d", lineNumber), Err: err}
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Date: strings.TrimSpace(rec[0]),
				Msg: fmt.Sprintf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))}
		}

		o, err := rowToObservation(rec)
		if err != nil {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Date: strings.TrimSpace(rec[0]),
				Msg: fmt.Sprintf("line %d", lineNumber), Err: err}
		}
		obs = append(obs, o)
	}

	return newSeries(symbol, obs)
}

// rowToObservation converts one CSV row (length already validated) into an
// Observation. Unlike JSON records, no cell may be empty.
//
//	0 timestamp -> Date (YYYY-MM-DD)
//	1 open      -> Open
//	2 high      -> High
//	3 low       -> Low
//	4 close     -> Close
//	5 volume    -> Volume (non-negative integer)
func rowToObservation(rec []string) (models.Observation, error) {
	var o models.Observation

	d, err := time.Parse(models.DateLayout, strings.TrimSpace(rec[0]))
	if err != nil {
		return o, fmt.Errorf("invalid timestamp: %v", err)
	}
	o.Date = d

	for i, dst := range []*float64{&o.Open, &o.High, &o.Low, &o.Close} {
		v, err := parsePrice(expectedHeaders[i+1], rec[i+1])
		if err != nil {
			return o, err
		}
		*dst = v
	}

	v, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 64)
	if err != nil {
		return o, fmt.Errorf("invalid volume: %v", err)
	}
	if v < 0 {
		return o, fmt.Errorf("invalid volume: %d is negative", v)
	}
	o.Volume = v

	return o, nil
}
