// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package i18n

// Password constraint descriptions.
const (
	PasswordMinLength    Message = "The password must have at least %d characters."
	PasswordMaxLength    Message = "The password may have at most %d characters."
	PasswordDigitCount   Message = "The password must contain at least %d digits."
	PasswordLetterCount  Message = "The password must contain at least %d letters."
	PasswordNoConstraint Message = "Any password is accepted."
)

// Credential validation failures.
const (
	CredentialNoUserName    Message = "No user name was provided."
	CredentialInvalid       Message = "The user name or password is invalid."
	CredentialUserDisabled  Message = "The user account is disabled or temporarily locked."
	CredentialStoreFailure  Message = "The user directory is currently unavailable."
	CredentialNoneSucceeded Message = "The credentials could not be validated."
)

// Login outcome descriptions.
const (
	LoginSuccess               Message = "Login successful."
	LoginUserNotExisting       Message = "The user does not exist."
	LoginUserDisabled          Message = "The user account is disabled."
	LoginInvalidPassword       Message = "The password is invalid."
	LoginSessionAlreadyHasUser Message = "Another user is already logged in to this session."
)

var german = map[Message]string{
	PasswordMinLength:    "Das Passwort muss mindestens %d Zeichen lang sein.",
	PasswordMaxLength:    "Das Passwort darf höchstens %d Zeichen lang sein.",
	PasswordDigitCount:   "Das Passwort muss mindestens %d Ziffern enthalten.",
	PasswordLetterCount:  "Das Passwort muss mindestens %d Buchstaben enthalten.",
	PasswordNoConstraint: "Jedes Passwort wird akzeptiert.",

	CredentialNoUserName:    "Es wurde kein Benutzername angegeben.",
	CredentialInvalid:       "Der Benutzername oder das Passwort ist ungültig.",
	CredentialUserDisabled:  "Das Benutzerkonto ist deaktiviert oder vorübergehend gesperrt.",
	CredentialStoreFailure:  "Das Benutzerverzeichnis ist derzeit nicht verfügbar.",
	CredentialNoneSucceeded: "Die Anmeldedaten konnten nicht geprüft werden.",

	LoginSuccess:               "Anmeldung erfolgreich.",
	LoginUserNotExisting:       "Der Benutzer existiert nicht.",
	LoginUserDisabled:          "Das Benutzerkonto ist deaktiviert.",
	LoginInvalidPassword:       "Das Passwort ist ungültig.",
	LoginSessionAlreadyHasUser: "In dieser Sitzung ist bereits ein anderer Benutzer angemeldet.",
}
