package provider

import (
	"net/url"
	"regexp"
	"strings"
)

var handleRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-_.%]*$`)

// ExtractSubject accepts either a bare profile handle or a profile URL in one
// of the accepted forms (with or without scheme, www prefix, trailing slash
// or query string) and returns the canonical handle. Input matching none of
// the accepted forms is rejected as invalid before any network call.
func ExtractSubject(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &Error{Kind: KindInvalidInput, Message: "empty profile identifier"}
	}

	if handleRe.MatchString(trimmed) {
		return trimmed, nil
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", &Error{Kind: KindInvalidInput, Message: "unparsable profile URL", Cause: err}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return "", &Error{Kind: KindInvalidInput, Message: "unrecognized profile host"}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "in" && handleRe.MatchString(parts[1]) {
		return parts[1], nil
	}

	return "", &Error{Kind: KindInvalidInput, Message: "profile URL has no recognizable handle"}
}

// ProfileURL rebuilds the canonical profile URL for a subject handle, the
// form the scraping providers expect.
func ProfileURL(subject string) string {
	return "https://www.linkedin.com/in/" + subject
}
