package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyStoreURL is returned when the store reference is blank.
var ErrEmptyStoreURL = errors.New("store url is empty")

// NormalizeStoreURL turns a user-supplied shop reference into the full
// storefront base URL. A bare shop name (no dot anywhere) gets the
// .myshopify.com suffix, a missing scheme defaults to https, and any
// trailing slash is removed so paths can be appended directly.
func NormalizeStoreURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "/")
	if s == "" {
		return "", ErrEmptyStoreURL
	}
	if !strings.Contains(s, ".") {
		s += ".myshopify.com"
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse store url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("store url %q has no host", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

// StoreHost extracts the host part of a normalized store URL for use as
// a label in logs and metrics. It falls back to the input when parsing
// fails.
func StoreHost(storeURL string) string {
	u, err := url.Parse(storeURL)
	if err != nil || u.Host == "" {
		return storeURL
	}
	return u.Host
}
