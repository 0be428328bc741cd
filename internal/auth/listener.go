// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// LoginListener observes session registry transitions. Methods are called
// after the registry lock is released and must not block for long.
type LoginListener interface {
	OnLogin(b Binding)
	OnLogout(b Binding)
	OnLoginFailed(sessionID, userName string, outcome LoginOutcome)
}

// LoginListenerFuncs adapts plain functions to LoginListener. Nil fields are
// ignored.
type LoginListenerFuncs struct {
	Login       func(b Binding)
	Logout      func(b Binding)
	LoginFailed func(sessionID, userName string, outcome LoginOutcome)
}

// OnLogin implements LoginListener.
func (f LoginListenerFuncs) OnLogin(b Binding) {
	if f.Login != nil {
		f.Login(b)
	}
}

// OnLogout implements LoginListener.
func (f LoginListenerFuncs) OnLogout(b Binding) {
	if f.Logout != nil {
		f.Logout(b)
	}
}

// OnLoginFailed implements LoginListener.
func (f LoginListenerFuncs) OnLoginFailed(sessionID, userName string, outcome LoginOutcome) {
	if f.LoginFailed != nil {
		f.LoginFailed(sessionID, userName, outcome)
	}
}

var _ LoginListener = LoginListenerFuncs{}
