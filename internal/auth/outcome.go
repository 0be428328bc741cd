// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/i18n"
)

// LoginOutcome is the result of a login attempt. The zero value is not a
// valid outcome; it accompanies an error from SessionRegistry.Login.
type LoginOutcome int

// Login outcomes.
const (
	LoginSuccess LoginOutcome = iota + 1
	LoginUserNotExisting
	LoginUserDisabled
	LoginInvalidPassword
	LoginSessionAlreadyHasUser
)

// LoginOutcomes lists every valid outcome.
func LoginOutcomes() []LoginOutcome {
	return []LoginOutcome{
		LoginSuccess,
		LoginUserNotExisting,
		LoginUserDisabled,
		LoginInvalidPassword,
		LoginSessionAlreadyHasUser,
	}
}

// IsSuccess reports whether the login bound the session.
func (o LoginOutcome) IsSuccess() bool { return o == LoginSuccess }

// String returns a stable snake_case name, used as a metric label.
func (o LoginOutcome) String() string {
	switch o {
	case LoginSuccess:
		return "success"
	case LoginUserNotExisting:
		return "user_not_existing"
	case LoginUserDisabled:
		return "user_disabled"
	case LoginInvalidPassword:
		return "invalid_password"
	case LoginSessionAlreadyHasUser:
		return "session_already_has_user"
	default:
		return "unknown"
	}
}

// Description returns a localized, human-readable description.
func (o LoginOutcome) Description(locale language.Tag) string {
	var msg i18n.Message
	switch o {
	case LoginSuccess:
		msg = i18n.LoginSuccess
	case LoginUserNotExisting:
		msg = i18n.LoginUserNotExisting
	case LoginUserDisabled:
		msg = i18n.LoginUserDisabled
	case LoginInvalidPassword:
		msg = i18n.LoginInvalidPassword
	case LoginSessionAlreadyHasUser:
		msg = i18n.LoginSessionAlreadyHasUser
	default:
		return o.String()
	}
	return i18n.Sprintf(locale, msg)
}
