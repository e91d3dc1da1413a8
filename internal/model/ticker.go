package model

import (
	"fmt"
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)

// NormalizeTicker upper-cases and trims s and rejects anything that is not a
// plain exchange symbol. Every ticker that reaches a fetcher or the scraper
// command line passes through it.
func NormalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("invalid ticker %q", s)
	}
	return t, nil
}
