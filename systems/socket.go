package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/config"
	"github.com/pthm-cable/ropeslack/physics"
)

// Socket is a square drop target for a plug.
type Socket struct {
	Bounds r2.Box
}

// NewSocket returns a socket with top-left corner (x, y).
func NewSocket(x, y, size float64) Socket {
	return Socket{Bounds: r2.NewBox(x, y, x+size, y+size)}
}

// Contains reports whether p lies in the socket, edges included.
func (s Socket) Contains(p physics.Point) bool {
	return s.Bounds.Contains(p)
}

// Center returns where a seated plug rests.
func (s Socket) Center() physics.Point {
	return s.Bounds.Center()
}

// Sockets is an ordered socket list; indexes are socket ids.
type Sockets []Socket

// NewSockets converts the scene's socket config.
func NewSockets(cfgs []config.SocketConfig) Sockets {
	ss := make(Sockets, len(cfgs))
	for i, c := range cfgs {
		ss[i] = NewSocket(c.X, c.Y, c.Size)
	}
	return ss
}

// Find returns the first socket containing p, or components.NoSocket.
func (ss Sockets) Find(p physics.Point) int {
	for i, s := range ss {
		if s.Contains(p) {
			return i
		}
	}
	return components.NoSocket
}

// Release resolves a plug dropped at p while seated in active. A hit snaps
// the plug to that socket's center. A miss returns it to active, or leaves it
// at p when active is not a socket.
func (ss Sockets) Release(active int, p physics.Point) (socket int, snapped bool, pos physics.Point) {
	if i := ss.Find(p); i != components.NoSocket {
		return i, true, ss[i].Center()
	}
	if active >= 0 && active < len(ss) {
		return active, false, ss[active].Center()
	}
	return components.NoSocket, false, p
}

// ReleasePlug drops one end of a rope at p and seats it. The driver base
// follows the plug so scripted motion continues from the socket.
func (ss Sockets) ReleasePlug(
	end components.End,
	p physics.Point,
	ends *components.Endpoints,
	plugged *components.Plugged,
	drv *components.Driver,
) (socket int, snapped bool) {
	socket, snapped, pos := ss.Release(plugged.Socket(end), p)
	ends.SetPoint(end, pos)
	plugged.Set(end, socket)
	if drv != nil {
		drv.SetBase(end, pos)
	}
	return socket, snapped
}
