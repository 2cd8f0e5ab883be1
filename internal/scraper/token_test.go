package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		token string
		ok    bool
	}{
		{
			"name before value",
			`<input type="hidden" name="_token" value="abc123def">`,
			"abc123def", true,
		},
		{
			"value before name",
			`<input type="hidden" value="abc123def" name="_token">`,
			"abc123def", true,
		},
		{
			"single quotes",
			`<input type='hidden' name='_token' value='tok-456'>`,
			"tok-456", true,
		},
		{
			"embedded in full page",
			`<html><form method="POST"><input name="_token" value="x9y8z7"><input name="query"></form></html>`,
			"x9y8z7", true,
		},
		{
			"no token field",
			`<html><form><input name="query"></form></html>`,
			"", false,
		},
		{
			"different hidden field",
			`<input type="hidden" name="_csrf" value="nope">`,
			"", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := ExtractToken(tt.html)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}
