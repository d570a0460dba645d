package patterns

// redactPlaceholder replaces the hidden middle of a token. Short tokens are
// replaced entirely so no partial reveal is possible.
const redactPlaceholder = "..."

// RedactToken returns the display-safe form of a token: the first four and
// last four characters with the middle replaced. Tokens of eight characters
// or fewer are fully replaced. This is the only form in which a token may be
// surfaced outside the cache file.
func RedactToken(token string) string {
	if len(token) <= 8 {
		return redactPlaceholder
	}
	return token[:4] + redactPlaceholder + token[len(token)-4:]
}
