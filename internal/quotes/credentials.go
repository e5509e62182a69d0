package quotes

import (
	"os"
	"strings"
)

// APIKeyEnv is the environment variable consulted when no API key is passed
// explicitly.
const APIKeyEnv = "ALPHA_VANTAGE_API_KEY"

// ResolveAPIKey returns explicit when non-empty, otherwise the value of
// APIKeyEnv. It fails with ErrMissingCredential when both are empty.
func ResolveAPIKey(explicit string) (string, error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(os.Getenv(APIKeyEnv)); k != "" {
		return k, nil
	}
	return "", &Error{Kind: ErrMissingCredential, Msg: "pass a key or set " + APIKeyEnv}
}

// NormalizeSymbol trims and upper-cases symbol. Empty symbols fail with
// ErrInvalidSymbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", &Error{Kind: ErrInvalidSymbol, Msg: "symbol is required"}
	}
	return s, nil
}
