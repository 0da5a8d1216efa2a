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

package notifications

// Notice describes events in the engine that the host environment might want
// to present to the user or act upon.
type Notice string

// List of defined notifications.
const (
	// the engine has run out of commands and is waiting for the host
	NotifyHalt Notice = "NotifyHalt"

	// the urgent stream has been entered or exited
	NotifyHighpriStart Notice = "NotifyHighpriStart"
	NotifyHighpriEnd   Notice = "NotifyHighpriEnd"

	// a new overlay has been made resident
	NotifyOverlaySwap Notice = "NotifyOverlaySwap"

	// the rasterizer has consumed an output region containing a full
	// synchronisation and the engine is waiting for the host to acknowledge
	// it. only raised in the diagnostic build
	NotifySyncFullAck Notice = "NotifySyncFullAck"

	// a fault has been recorded and the engine has stopped
	NotifyFault Notice = "NotifyFault"
)

// Notify is used for direct communication between the engine and the
// environment.
type Notify interface {
	Notify(notice Notice) error
}
