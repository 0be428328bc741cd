// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/i18n"
)

// Kind identifies a constraint variant in its serialized form.
type Kind string

// Constraint kinds.
const (
	KindMinLength         Kind = "min_length"
	KindMaxLength         Kind = "max_length"
	KindMustContainDigit  Kind = "must_contain_digit"
	KindMustContainLetter Kind = "must_contain_letter"
)

// Constraint is a single password strength rule.
type Constraint interface {
	// IsPasswordValid returns true if the plaintext password satisfies the rule.
	IsPasswordValid(password string) bool

	// Description returns a human-readable description for display.
	Description(locale language.Tag) string

	// Spec returns the serializable form of the constraint.
	Spec() Spec
}

// Spec is the serializable form of a Constraint.
type Spec struct {
	Kind  Kind `json:"kind" yaml:"kind" koanf:"kind" jsonschema:"enum=min_length,enum=max_length,enum=must_contain_digit,enum=must_contain_letter"`
	Value int  `json:"value" yaml:"value" koanf:"value" jsonschema:"minimum=1"`
}

// Build creates the constraint described by the spec.
func (s Spec) Build() (Constraint, error) {
	var (
		c   Constraint
		err error
	)
	switch s.Kind {
	case KindMinLength:
		c, err = NewMinLength(s.Value)
	case KindMaxLength:
		c, err = NewMaxLength(s.Value)
	case KindMustContainDigit:
		c, err = NewMustContainDigit(s.Value)
	case KindMustContainLetter:
		c, err = NewMustContainLetter(s.Value)
	default:
		return nil, oops.Code("PASSWORD_CONSTRAINT_UNKNOWN").
			With("kind", string(s.Kind)).
			Errorf("unknown password constraint kind %q", s.Kind)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func checkBound(kind Kind, n int) error {
	if n < 1 {
		return oops.Code("PASSWORD_CONSTRAINT_INVALID").
			With("kind", string(kind)).
			With("value", n).
			Errorf("%s requires a value of at least 1, got %d", kind, n)
	}
	return nil
}

// MinLength requires at least Min characters.
type MinLength struct {
	min int
}

// NewMinLength creates a MinLength constraint. n must be at least 1.
func NewMinLength(n int) (MinLength, error) {
	if err := checkBound(KindMinLength, n); err != nil {
		return MinLength{}, err
	}
	return MinLength{min: n}, nil
}

// Min returns the minimum number of characters.
func (c MinLength) Min() int { return c.min }

// IsPasswordValid implements Constraint.
func (c MinLength) IsPasswordValid(password string) bool {
	return utf8.RuneCountInString(password) >= c.min
}

// Description implements Constraint.
func (c MinLength) Description(locale language.Tag) string {
	return i18n.Sprintf(locale, i18n.PasswordMinLength, c.min)
}

// Spec implements Constraint.
func (c MinLength) Spec() Spec { return Spec{Kind: KindMinLength, Value: c.min} }

// MaxLength allows at most Max characters.
type MaxLength struct {
	max int
}

// NewMaxLength creates a MaxLength constraint. n must be at least 1.
func NewMaxLength(n int) (MaxLength, error) {
	if err := checkBound(KindMaxLength, n); err != nil {
		return MaxLength{}, err
	}
	return MaxLength{max: n}, nil
}

// Max returns the maximum number of characters.
func (c MaxLength) Max() int { return c.max }

// IsPasswordValid implements Constraint.
func (c MaxLength) IsPasswordValid(password string) bool {
	return utf8.RuneCountInString(password) <= c.max
}

// Description implements Constraint.
func (c MaxLength) Description(locale language.Tag) string {
	return i18n.Sprintf(locale, i18n.PasswordMaxLength, c.max)
}

// Spec implements Constraint.
func (c MaxLength) Spec() Spec { return Spec{Kind: KindMaxLength, Value: c.max} }

// MustContainDigit requires at least Count Unicode decimal digits.
type MustContainDigit struct {
	count int
}

// NewMustContainDigit creates a MustContainDigit constraint. n must be at least 1.
func NewMustContainDigit(n int) (MustContainDigit, error) {
	if err := checkBound(KindMustContainDigit, n); err != nil {
		return MustContainDigit{}, err
	}
	return MustContainDigit{count: n}, nil
}

// Count returns the required number of digits.
func (c MustContainDigit) Count() int { return c.count }

// IsPasswordValid implements Constraint.
func (c MustContainDigit) IsPasswordValid(password string) bool {
	return countRunes(password, unicode.IsDigit, c.count) >= c.count
}

// Description implements Constraint.
func (c MustContainDigit) Description(locale language.Tag) string {
	return i18n.Sprintf(locale, i18n.PasswordDigitCount, c.count)
}

// Spec implements Constraint.
func (c MustContainDigit) Spec() Spec { return Spec{Kind: KindMustContainDigit, Value: c.count} }

// MustContainLetter requires at least Count alphabetic characters.
type MustContainLetter struct {
	count int
}

// NewMustContainLetter creates a MustContainLetter constraint. n must be at least 1.
func NewMustContainLetter(n int) (MustContainLetter, error) {
	if err := checkBound(KindMustContainLetter, n); err != nil {
		return MustContainLetter{}, err
	}
	return MustContainLetter{count: n}, nil
}

// Count returns the required number of letters.
func (c MustContainLetter) Count() int { return c.count }

// IsPasswordValid implements Constraint.
func (c MustContainLetter) IsPasswordValid(password string) bool {
	return countRunes(password, unicode.IsLetter, c.count) >= c.count
}

// Description implements Constraint.
func (c MustContainLetter) Description(locale language.Tag) string {
	return i18n.Sprintf(locale, i18n.PasswordLetterCount, c.count)
}

// Spec implements Constraint.
func (c MustContainLetter) Spec() Spec { return Spec{Kind: KindMustContainLetter, Value: c.count} }

// countRunes counts runes matching pred, stopping once limit is reached.
func countRunes(s string, pred func(rune) bool, limit int) int {
	n := 0
	for _, r := range s {
		if pred(r) {
			n++
			if n >= limit {
				break
			}
		}
	}
	return n
}
