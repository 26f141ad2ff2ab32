package domain

import "strings"

// TokenID identifies a registered token.
type TokenID string

// ChainID identifies a chain (self or counterparty).
type ChainID string

// IDSeparator is the reserved separator that appears in externally-supplied
// token identifiers (rune-style names). Identifiers containing it are rewritten
// to a canonical form before they are used as registry keys or subdenoms.
const IDSeparator = "•"

// canonicalReplacement substitutes the reserved separator in canonical ids.
const canonicalReplacement = "_"

// Token is a registered bridged asset.
// Corresponds to the tokens map in the bridge_state root record.
type Token struct {
	TokenID  TokenID `json:"token_id"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	Icon     string  `json:"icon,omitempty"`
}

// CanonicalTokenID rewrites an externally-supplied token id containing the
// reserved separator to its canonical internal form. The second return value
// reports whether a rewrite happened (callers record the reverse mapping).
func CanonicalTokenID(id TokenID) (TokenID, bool) {
	s := string(id)
	if !strings.Contains(s, IDSeparator) {
		return id, false
	}
	return TokenID(strings.ReplaceAll(s, IDSeparator, canonicalReplacement)), true
}

// SubdenomForToken derives the token-factory subdenom from a canonical token id.
// Token ids are namespaced ("Bitcoin-runes-NAME"); the last segment is the subdenom.
func SubdenomForToken(id TokenID) string {
	s := string(id)
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// FactoryDenom builds the full token-factory denom for a subdenom owned by addr.
func FactoryDenom(addr, subdenom string) string {
	return "factory/" + addr + "/" + subdenom
}
