package customers

import (
	"net/url"
	"strings"
)

// normalizeOptionalText trims a nullable text field; empty becomes nil.
// A nil input stays nil (field not supplied or explicit null).
func normalizeOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeOptionalCountryCode uppercases a trimmed country code, nil when empty.
func normalizeOptionalCountryCode(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*value))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeOptionalDomain reduces a URL or host string to a bare lowercase
// hostname. Unparseable values become nil.
func normalizeOptionalDomain(value *string) *string {
	text := normalizeOptionalText(value)
	if text == nil {
		return nil
	}
	domain := toDomain(*text)
	if domain == "" {
		return nil
	}
	return &domain
}

func toDomain(value string) string {
	candidate := value
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err == nil && parsed.Hostname() != "" {
		return strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	}

	// Fallback for values the URL parser refuses: strip scheme, auth,
	// port, and path by hand.
	withoutScheme := value
	if idx := strings.Index(withoutScheme, "://"); idx >= 0 {
		withoutScheme = withoutScheme[idx+3:]
	}
	host := withoutScheme
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.LastIndex(host, "@"); idx >= 0 {
		host = host[idx+1:]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || strings.ContainsAny(host, " \t") {
		return ""
	}
	return host
}
