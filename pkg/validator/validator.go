package validator

import (
	"net/url"
	"strings"
)

// ValidateURL checks that a URL is well-formed and absolute.
// Any scheme is accepted as long as a host is present.
// The input is not modified; callers store it verbatim.
func ValidateURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return ErrEmptyURL
	}

	// Parse URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ErrInvalidURL
	}

	// Check scheme
	if !parsedURL.IsAbs() {
		return ErrMissingScheme
	}

	// Check host
	if parsedURL.Host == "" {
		return ErrInvalidHost
	}

	return nil
}
