package scraper

import "regexp"

// The target's markup is not under our control and has shipped the token
// input with either attribute order, so both are matched. Quoting style is
// also free.
var (
	tokenNameFirst  = regexp.MustCompile(`name=["']_token["'][^>]*value=["']([^"']+)["']`)
	tokenValueFirst = regexp.MustCompile(`value=["']([^"']+)["'][^>]*name=["']_token["']`)
)

// ExtractToken scans raw HTML for the hidden anti-forgery token field and
// returns its value. The second return is false when no token is present.
func ExtractToken(html string) (string, bool) {
	if m := tokenNameFirst.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	if m := tokenValueFirst.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}
