// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"encoding/json"

	"github.com/samber/oops"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/holomush/warden/internal/i18n"
)

// ConstraintList is an ordered, immutable set of constraints combined with
// logical AND. The zero value accepts every password.
type ConstraintList struct {
	constraints []Constraint
}

// NewConstraintList creates a list from the given constraints. Nil entries are skipped.
func NewConstraintList(constraints ...Constraint) ConstraintList {
	cs := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return ConstraintList{constraints: cs}
}

// ParseConstraintList builds a list from its serialized form.
func ParseConstraintList(specs []Spec) (ConstraintList, error) {
	cs := make([]Constraint, 0, len(specs))
	for i, s := range specs {
		c, err := s.Build()
		if err != nil {
			return ConstraintList{}, oops.Code("PASSWORD_POLICY_INVALID").
				With("index", i).
				Wrap(err)
		}
		cs = append(cs, c)
	}
	return ConstraintList{constraints: cs}, nil
}

// Len returns the number of constraints.
func (l ConstraintList) Len() int {
	return len(l.constraints)
}

// IsEmpty returns true if the list has no constraints.
func (l ConstraintList) IsEmpty() bool {
	return len(l.constraints) == 0
}

// Constraints returns a copy of the contained constraints.
func (l ConstraintList) Constraints() []Constraint {
	out := make([]Constraint, len(l.constraints))
	copy(out, l.constraints)
	return out
}

// IsPasswordValid returns true if every constraint accepts the password.
func (l ConstraintList) IsPasswordValid(password string) bool {
	for _, c := range l.constraints {
		if !c.IsPasswordValid(password) {
			return false
		}
	}
	return true
}

// Failing returns the constraints that reject the password, in list order.
func (l ConstraintList) Failing(password string) []Constraint {
	var failed []Constraint
	for _, c := range l.constraints {
		if !c.IsPasswordValid(password) {
			failed = append(failed, c)
		}
	}
	return failed
}

// Descriptions returns the localized description of each constraint.
// An empty list yields a single "any password" description.
func (l ConstraintList) Descriptions(locale language.Tag) []string {
	if l.IsEmpty() {
		return []string{i18n.Sprintf(locale, i18n.PasswordNoConstraint)}
	}
	out := make([]string, 0, len(l.constraints))
	for _, c := range l.constraints {
		out = append(out, c.Description(locale))
	}
	return out
}

// Specs returns the serialized form of the list.
func (l ConstraintList) Specs() []Spec {
	out := make([]Spec, 0, len(l.constraints))
	for _, c := range l.constraints {
		out = append(out, c.Spec())
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (l ConstraintList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Specs()) //nolint:wrapcheck // Spec marshaling cannot fail
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ConstraintList) UnmarshalJSON(data []byte) error {
	var specs []Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return oops.Code("PASSWORD_POLICY_INVALID").With("operation", "decode json").Wrap(err)
	}
	parsed, err := ParseConstraintList(specs)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l ConstraintList) MarshalYAML() (any, error) {
	return l.Specs(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *ConstraintList) UnmarshalYAML(node *yaml.Node) error {
	var specs []Spec
	if err := node.Decode(&specs); err != nil {
		return oops.Code("PASSWORD_POLICY_INVALID").With("operation", "decode yaml").Wrap(err)
	}
	parsed, err := ParseConstraintList(specs)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
