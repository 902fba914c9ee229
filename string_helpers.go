package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringTransformer defines the contract for a function that can transform a string.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

// defaultTransformer is the production implementation of our interface.
type defaultTransformer struct{}

// TransformString calls the actual transform.String function.
func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

// Use a variable of the interface type. This is our "injection point".
var transformer StringTransformer = defaultTransformer{}

// This file contains helper functions for string manipulation.

// normalizeCityKey derives the canonical city partition key from a country
// code and a city name, e.g. ("ie", "Dún Laoghaire") -> "IE#DUN_LAOGHAIRE".
// It removes diacritical marks, uppercases, and collapses runs of
// non-alphanumeric characters into single underscores, so every spelling a
// client sends maps to the same scrape partition.
func normalizeCityKey(countryCode, city string) (string, error) {
	if !utf8.ValidString(city) {
		return "", fmt.Errorf("city name is not valid UTF-8")
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transformer.TransformString(t, city)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(stripped) {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	normalized := strings.TrimSuffix(b.String(), "_")
	if normalized == "" {
		return "", fmt.Errorf("city name %q normalizes to nothing", city)
	}
	return strings.ToUpper(countryCode) + "#" + normalized, nil
}
