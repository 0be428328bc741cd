// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/warden/pkg/errutil"
)

func TestLoginCmd_Success(t *testing.T) {
	cfgPath := writeEnv(t, "")

	stdout, _, err := runCmd(t, nil, "", "--config", cfgPath,
		"login", "user", "--password", "userpw", "--session", "s-1",
		"--check", "read:user:user-id",
		"--check", "read:user:admin-id",
	)
	require.NoError(t, err)
	assert.Equal(t,
		"credentials: valid\n"+
			"login: success (Login successful.)\n"+
			"session: s-1\n"+
			"user: user-id\n"+
			"roles: r-user\n"+
			"check read:user:user-id: allow\n"+
			"check read:user:admin-id: deny\n",
		stdout)
}

func TestLoginCmd_PasswordFromStdin(t *testing.T) {
	cfgPath := writeEnv(t, "")

	stdout, _, err := runCmd(t, nil, "adminpw\n", "--config", cfgPath,
		"login", "admin", "--session", "s-1", "--check", "delete:role:r-user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "roles: r-admin,r-user\n")
	assert.Contains(t, stdout, "check delete:role:r-user: allow\n")
}

func TestLoginCmd_Failures(t *testing.T) {
	cfgPath := writeEnv(t, "")

	tests := []struct {
		name        string
		login       string
		password    string
		wantOutcome string
		wantCreds   string
	}{
		{
			name:        "wrong password",
			login:       "user",
			password:    "nope",
			wantOutcome: "login: invalid_password (The password is invalid.)\n",
			wantCreds:   "credentials: The user name or password is invalid.\n",
		},
		{
			name:        "unknown user",
			login:       "ghost",
			password:    "whatever",
			wantOutcome: "login: user_not_existing (The user does not exist.)\n",
			wantCreds:   "credentials: The user name or password is invalid.\n",
		},
		{
			name:        "disabled user",
			login:       "off",
			password:    "offpw",
			wantOutcome: "login: user_disabled (The user account is disabled.)\n",
			wantCreds:   "credentials: The user account is disabled or temporarily locked.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCmd(t, nil, "", "--config", cfgPath,
				"login", tt.login, "--password", tt.password)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "LOGIN_FAILED")
			assert.Contains(t, stdout, tt.wantCreds)
			assert.Contains(t, stdout, tt.wantOutcome)
			assert.NotContains(t, stdout, "session:")
		})
	}
}

func TestLoginCmd_GermanLocale(t *testing.T) {
	cfgPath := writeEnv(t, "locale: de\n")

	stdout, _, err := runCmd(t, nil, "", "--config", cfgPath,
		"login", "user", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, stdout, "credentials: Der Benutzername oder das Passwort ist ungültig.\n")
	assert.Contains(t, stdout, "login: invalid_password (Das Passwort ist ungültig.)\n")
}

func TestLoginCmd_MalformedCheck(t *testing.T) {
	cfgPath := writeEnv(t, "")

	_, _, err := runCmd(t, nil, "", "--config", cfgPath,
		"login", "user", "--password", "userpw", "--check", "nocolon")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_CHECK")
}
