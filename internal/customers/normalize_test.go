package customers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestNormalizeOptionalText(t *testing.T) {
	assert.Nil(t, normalizeOptionalText(nil))
	assert.Nil(t, normalizeOptionalText(strptr("")))
	assert.Nil(t, normalizeOptionalText(strptr("   ")))

	got := normalizeOptionalText(strptr("  hello "))
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

func TestNormalizeOptionalCountryCode(t *testing.T) {
	assert.Nil(t, normalizeOptionalCountryCode(nil))
	assert.Nil(t, normalizeOptionalCountryCode(strptr("  ")))

	got := normalizeOptionalCountryCode(strptr(" it "))
	require.NotNil(t, got)
	assert.Equal(t, "IT", *got)
}

func TestNormalizeOptionalDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://example.com/path?q=1", "example.com"},
		{"HTTP://WWW.Example.COM", "www.example.com"},
		{"example.com.", "example.com"},
		{"user:pass@example.com:8080/x", "example.com"},
		{"sub.example.co.uk/page#frag", "sub.example.co.uk"},
	}
	for _, tt := range tests {
		got := normalizeOptionalDomain(strptr(tt.in))
		require.NotNil(t, got, "input %q", tt.in)
		assert.Equal(t, tt.want, *got, "input %q", tt.in)
	}

	assert.Nil(t, normalizeOptionalDomain(nil))
	assert.Nil(t, normalizeOptionalDomain(strptr("")))
	assert.Nil(t, normalizeOptionalDomain(strptr("   ")))
}
