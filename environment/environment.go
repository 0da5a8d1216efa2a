// This file is part of rspqueue.
//
// rspqueue is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rspqueue is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rspqueue.  If not, see <https://www.gnu.org/licenses/>.

// Package environment provides the context for an engine instance. It is
// particularly useful when running more than one engine, for example when
// comparing the output of the same script in two configurations.
package environment

import (
	"github.com/jetsetilly/rspqueue/notifications"
	"github.com/jetsetilly/rspqueue/preferences"
	"github.com/spf13/afero"
)

// Label is used to name the environment.
type Label string

// MainEngine is the label of the main engine. Only the main engine is
// allowed to write to the central log.
const MainEngine = Label("")

// Environment is used to provide context for an engine instance.
type Environment struct {
	Label Label

	// the engine preferences
	Prefs *preferences.Preferences

	// notifications are forwarded to this implementation. can be nil
	notify notifications.Notify
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The prefs argument can be nil, in which case a new Preferences instance
// will be created from the filesystem. Providing a non-nil value allows the
// preferences of more than one engine to be synchronised.
func NewEnvironment(fs afero.Fs, label Label, prefs *preferences.Preferences, notify notifications.Notify) (*Environment, error) {
	env := &Environment{
		Label:  label,
		notify: notify,
	}

	var err error

	if prefs == nil {
		prefs, err = preferences.NewPreferences(fs)
		if err != nil {
			return nil, err
		}
	}

	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in an known default state. Useful for
// testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsMainEngine returns true if the environment is intended for the main
// engine in the system.
func (env *Environment) IsMainEngine() bool {
	return env.Label == MainEngine
}

// AllowLogging implements the logger.Permission interface.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEngine()
}

// Notify implements the notifications.Notify interface. Notifications are
// dropped if the environment was created without a notification handler.
func (env *Environment) Notify(notice notifications.Notice) error {
	if env.notify == nil {
		return nil
	}
	return env.notify.Notify(notice)
}
