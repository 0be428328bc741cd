// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package i18n selects human-readable strings for a locale.
//
// Messages are identified by their English text, which doubles as the
// fallback when no translation exists. The locale never influences
// validation logic, only the text returned for display.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message is an English format string used as a catalog key.
type Message string

// Default is the locale used when none is given or none matches.
var Default = language.English

var (
	supported = []language.Tag{language.English, language.German}
	matcher   = language.NewMatcher(supported)
	printers  = newPrinters()
)

func newPrinters() map[language.Tag]*message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for key, text := range german {
		// SetString only fails for malformed tags; German is well-formed.
		_ = b.SetString(language.German, string(key), text) //nolint:errcheck // static catalog
	}

	m := make(map[language.Tag]*message.Printer, len(supported))
	for _, tag := range supported {
		m[tag] = message.NewPrinter(tag, message.Catalog(b))
	}
	return m
}

// Supported returns the locales that have a translation catalog.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Match returns the supported locale closest to tag.
func Match(tag language.Tag) language.Tag {
	if tag == language.Und {
		return Default
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default
	}
	return supported[idx]
}

// Parse parses a BCP 47 locale, returning Default for empty or malformed input.
func Parse(s string) language.Tag {
	if s == "" {
		return Default
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default
	}
	return tag
}

// Sprintf formats msg for the given locale.
func Sprintf(tag language.Tag, msg Message, args ...any) string {
	return printers[Match(tag)].Sprintf(string(msg), args...)
}
