// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/holomush/warden/internal/password"
	"github.com/holomush/warden/pkg/errutil"
)

func TestConstraintList_Empty(t *testing.T) {
	var zero password.ConstraintList
	empty := password.NewConstraintList()

	for _, l := range []password.ConstraintList{zero, empty} {
		assert.True(t, l.IsEmpty())
		assert.True(t, l.IsPasswordValid(""))
		assert.True(t, l.IsPasswordValid("x"))
		assert.True(t, l.IsPasswordValid(strings.Repeat("a", 1000)))
		assert.Empty(t, l.Failing(""))
	}
}

func TestConstraintList_MinAndMax(t *testing.T) {
	l := password.NewConstraintList(mustMin(t, 3), mustMax(t, 9))

	assert.True(t, l.IsPasswordValid("abc"))
	assert.True(t, l.IsPasswordValid("123456789"))
	assert.False(t, l.IsPasswordValid(""))
	assert.False(t, l.IsPasswordValid("1234567890"))
	assert.False(t, l.IsPasswordValid(strings.Repeat("z", 25)))
}

func TestConstraintList_DigitAndLetter(t *testing.T) {
	l := password.NewConstraintList(mustDigit(t, 1), mustLetter(t, 1))

	assert.False(t, l.IsPasswordValid("abc"))
	assert.False(t, l.IsPasswordValid("123456789"))
	assert.True(t, l.IsPasswordValid("abc1"))
}

func TestConstraintList_OrderDoesNotMatter(t *testing.T) {
	a := password.NewConstraintList(mustMin(t, 3), mustMax(t, 9), mustDigit(t, 1))
	b := password.NewConstraintList(mustDigit(t, 1), mustMax(t, 9), mustMin(t, 3))

	for _, p := range []string{"", "ab1", "abc", "abcdefgh1", "abcdefghi1", "1"} {
		assert.Equal(t, a.IsPasswordValid(p), b.IsPasswordValid(p), "password %q", p)
	}
}

func TestConstraintList_SkipsNil(t *testing.T) {
	l := password.NewConstraintList(nil, mustMin(t, 2), nil)
	assert.Equal(t, 1, l.Len())
}

func TestConstraintList_Failing(t *testing.T) {
	minLen := mustMin(t, 5)
	digit := mustDigit(t, 1)
	l := password.NewConstraintList(minLen, digit)

	failed := l.Failing("abc")
	require.Len(t, failed, 2)
	assert.Equal(t, password.Constraint(minLen), failed[0])
	assert.Equal(t, password.Constraint(digit), failed[1])

	assert.Empty(t, l.Failing("abcde1"))
}

func TestConstraintList_Descriptions(t *testing.T) {
	l := password.NewConstraintList(mustMin(t, 8), mustDigit(t, 1))
	assert.Equal(t, []string{
		"The password must have at least 8 characters.",
		"The password must contain at least 1 digits.",
	}, l.Descriptions(language.English))

	assert.Equal(t, []string{"Jedes Passwort wird akzeptiert."},
		password.NewConstraintList().Descriptions(language.German))
}

func TestConstraintList_Constraints_ReturnsCopy(t *testing.T) {
	l := password.NewConstraintList(mustMin(t, 8))
	cs := l.Constraints()
	cs[0] = mustMax(t, 1)
	assert.Equal(t, password.Constraint(mustMin(t, 8)), l.Constraints()[0])
}

func TestParseConstraintList(t *testing.T) {
	t.Run("valid specs", func(t *testing.T) {
		l, err := password.ParseConstraintList([]password.Spec{
			{Kind: password.KindMinLength, Value: 3},
			{Kind: password.KindMustContainLetter, Value: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, l.Len())
		assert.True(t, l.IsPasswordValid("ab1c"))
		assert.False(t, l.IsPasswordValid("123"))
	})

	t.Run("invalid spec reports index", func(t *testing.T) {
		_, err := password.ParseConstraintList([]password.Spec{
			{Kind: password.KindMinLength, Value: 3},
			{Kind: password.KindMaxLength, Value: -1},
		})
		require.Error(t, err)
		// oops reports the innermost code; the list adds the failing index.
		errutil.AssertErrorCode(t, err, "PASSWORD_CONSTRAINT_INVALID")
		errutil.AssertErrorContext(t, err, "index", 1)
	})
}

func TestConstraintList_YAML(t *testing.T) {
	in := `
- kind: min_length
  value: 3
- kind: max_length
  value: 9
`
	var l password.ConstraintList
	require.NoError(t, yaml.Unmarshal([]byte(in), &l))
	assert.Equal(t, []password.Spec{
		{Kind: password.KindMinLength, Value: 3},
		{Kind: password.KindMaxLength, Value: 9},
	}, l.Specs())

	out, err := yaml.Marshal(l)
	require.NoError(t, err)

	var again password.ConstraintList
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, l.Specs(), again.Specs())
}

func TestConstraintList_JSON(t *testing.T) {
	l := password.NewConstraintList(mustDigit(t, 2), mustLetter(t, 1))

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"kind":"must_contain_digit","value":2},{"kind":"must_contain_letter","value":1}]`, string(data))

	var again password.ConstraintList
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, l.Specs(), again.Specs())

	var bad password.ConstraintList
	err = json.Unmarshal([]byte(`[{"kind":"min_length","value":0}]`), &bad)
	require.Error(t, err)
}
