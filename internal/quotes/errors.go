package quotes

import (
	"errors"
	"strconv"
	"strings"
)

// Error kinds. Match them with errors.Is; every error returned by this
// package and by quote sources is an *Error carrying one of these kinds.
var (
	ErrMissingCredential = errors.New("missing API key")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRange      = errors.New("invalid range")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrDateNotFound      = errors.New("date not found")
	ErrEmptyHistory      = errors.New("empty history")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrNetwork           = errors.New("network error")
	ErrMalformedData     = errors.New("malformed data")
	ErrProvider          = errors.New("provider error")
)

// Error is the concrete error type of the quote layer.
//
// Fields:
//   - Kind: one of the Err* sentinels above.
//   - Symbol: the symbol being queried (always set when known).
//   - Date: the offending or requested date, when relevant.
//   - N: the requested window size for range errors.
//   - Msg: extra human readable detail (e.g. provider message).
//   - Err: underlying cause, exposed through Unwrap.
type Error struct {
	Kind   error
	Symbol string
	Date   string
	N      int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Symbol != "" {
		b.WriteString(": symbol=")
		b.WriteString(e.Symbol)
	}
	if e.Date != "" {
		b.WriteString(" date=")
		b.WriteString(e.Date)
	}
	if errors.Is(e.Kind, ErrInvalidRange) || e.N != 0 {
		b.WriteString(" n=")
		b.WriteString(strconv.Itoa(e.N))
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

// Kind returns the sentinel kind of err, or nil if err does not come from
// the quote layer.
func Kind(err error) error {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return nil
}
