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

// Package preferences collates the preference values used by the engine, the
// host producer and the simulated hardware.
package preferences

import (
	"github.com/jetsetilly/rspqueue/curated"
	"github.com/jetsetilly/rspqueue/prefs"
	"github.com/jetsetilly/rspqueue/resources"
	"github.com/spf13/afero"
)

// Preferences defines and collates all the preference values used by the
// engine.
type Preferences struct {
	dsk *prefs.Disk

	// diagnostic mode checks overlay and command ids and halts the engine on
	// an invalid value. it also enables the host acknowledgement of full
	// synchronisation
	Diagnostic prefs.Bool

	// how long to wait for host acknowledgement in diagnostic mode
	AckTimeout prefs.Int

	// how long Run() waits for a signal before rechecking the context
	HaltTimeout prefs.Int

	// size of each of the two command buffers of the two streams
	LowpriBufferWords  prefs.Int
	HighpriBufferWords prefs.Int

	// size of each of the two alternating output regions
	OutputRegionSize prefs.Int

	// number of bytes the rasterizer consumes for every tick
	RasterizerBytesPerTick prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences(fs afero.Fs) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	pth, err := resources.JoinPath(fs, prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(fs, pth)
	if err != nil {
		return nil, err
	}

	for k, v := range map[string]interface {
		Set(prefs.Value) error
		Get() prefs.Value
		Reset() error
		String() string
	}{
		"rspq.diagnostic":         &p.Diagnostic,
		"rspq.ackTimeout":         &p.AckTimeout,
		"rspq.haltTimeout":        &p.HaltTimeout,
		"host.lowpriBufferWords":  &p.LowpriBufferWords,
		"host.highpriBufferWords": &p.HighpriBufferWords,
		"output.regionSize":       &p.OutputRegionSize,
		"rdp.bytesPerTick":        &p.RasterizerBytesPerTick,
	} {
		if err := p.dsk.Add(k, v); err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load()
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Diagnostic.Set(false)
	p.AckTimeout.Set(1000)
	p.HaltTimeout.Set(100)
	p.LowpriBufferWords.Set(0x200)
	p.HighpriBufferWords.Set(0x80)
	p.OutputRegionSize.Set(0x1000)
	p.RasterizerBytesPerTick.Set(64)
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
