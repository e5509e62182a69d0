package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/guttosm/quotepulse/internal/domain/models"
)

func TestNewQuoteResponse(t *testing.T) {
	q := models.Quote{Symbol: "AAPL", Date: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), Open: 130, High: 131, Low: 129, Close: 130.5, Volume: 1000000}
	b, err := json.Marshal(NewQuoteResponse(q))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"symbol":"AAPL","date":"2023-01-10","open":130,"high":131,"low":129,"close":130.5,"volume":1000000}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestNewExtremeResponse(t *testing.T) {
	day := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)

	lo, ok := NewExtremeResponse(models.Extreme{Symbol: "ABC", Kind: models.ExtremeMin, Price: 90, Date: day, Period: "last 3 trading days"}).(MinResponse)
	if !ok || lo.MinPrice != 90 || lo.Date != "2023-01-04" || lo.Period != "last 3 trading days" {
		t.Fatalf("unexpected min response: %+v", lo)
	}

	hi, ok := NewExtremeResponse(models.Extreme{Symbol: "ABC", Kind: models.ExtremeMax, Price: 110, Date: day}).(MaxResponse)
	if !ok || hi.MaxPrice != 110 || hi.Symbol != "ABC" {
		t.Fatalf("unexpected max response: %+v", hi)
	}
}
