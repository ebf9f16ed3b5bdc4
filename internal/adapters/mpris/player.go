// Package mpris drives a desktop media player (the Spotify client by default)
// over the MPRIS D-Bus interface.
package mpris

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	servicePrefix    = "org.mpris.MediaPlayer2."
)

// busObject is the part of dbus.BusObject the player uses.
type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// Player implements ports.Player for one MPRIS service.
type Player struct {
	obj     busObject
	service string
}

var _ ports.Player = (*Player)(nil)

// New binds to service on an open session bus connection.
func New(bus *dbus.Conn, service string) (*Player, error) {
	if bus == nil {
		return nil, errors.New("mpris adapter: nil dbus connection")
	}
	if service == "" {
		return nil, errors.New("mpris adapter: empty service name")
	}
	return &Player{obj: bus.Object(service, mprisPath), service: service}, nil
}

// ListServices returns the MPRIS players currently on the bus.
func ListServices(bus *dbus.Conn) ([]string, error) {
	var names []string
	if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("mpris adapter: list dbus names: %w", err)
	}
	var services []string
	for _, name := range names {
		if strings.HasPrefix(name, servicePrefix) {
			services = append(services, name)
		}
	}
	return services, nil
}

func (p *Player) call(ctx context.Context, method string, args ...interface{}) error {
	if err := p.obj.CallWithContext(ctx, mprisPlayerIface+"."+method, 0, args...).Err; err != nil {
		return fmt.Errorf("mpris adapter: %s on %s: %w", method, p.service, err)
	}
	return nil
}

func (p *Player) LoadURI(ctx context.Context, uri string) error {
	return p.call(ctx, "OpenUri", uri)
}

func (p *Player) Play(ctx context.Context) error {
	return p.call(ctx, "Play")
}

func (p *Player) Pause(ctx context.Context) error {
	return p.call(ctx, "Pause")
}

// Seek jumps to positionMs. SetPosition needs the current track id; players
// that do not report one get a relative Seek instead.
func (p *Player) Seek(ctx context.Context, positionMs int) error {
	target := int64(positionMs) * 1000
	if id := p.trackID(); id != "" {
		return p.call(ctx, "SetPosition", id, target)
	}
	current, err := p.positionMicros()
	if err != nil {
		return err
	}
	return p.call(ctx, "Seek", target-current)
}

// Status reads the playback state and position.
func (p *Player) Status() (ports.PlaybackUpdate, error) {
	prop, err := p.obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return ports.PlaybackUpdate{}, fmt.Errorf("mpris adapter: get playback status: %w", err)
	}
	status, _ := prop.Value().(string)

	pos, err := p.positionMicros()
	if err != nil {
		return ports.PlaybackUpdate{}, err
	}
	return ports.PlaybackUpdate{
		IsPaused: status != "Playing",
		Position: int(pos / 1000),
	}, nil
}

// Updates polls Status every interval until ctx is done, then closes the
// channel. Failed polls are skipped.
func (p *Player) Updates(ctx context.Context, interval time.Duration) <-chan ports.PlaybackUpdate {
	out := make(chan ports.PlaybackUpdate, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				u, err := p.Status()
				if err != nil {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (p *Player) positionMicros() (int64, error) {
	prop, err := p.obj.GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("mpris adapter: get position: %w", err)
	}
	pos, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("mpris adapter: unexpected position type %T", prop.Value())
	}
	if pos < 0 {
		return 0, nil
	}
	return pos, nil
}

func (p *Player) trackID() dbus.ObjectPath {
	prop, err := p.obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return ""
	}
	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return ""
	}
	v, ok := metadata["mpris:trackid"]
	if !ok {
		return ""
	}
	switch id := v.Value().(type) {
	case dbus.ObjectPath:
		return id
	case string:
		if dbus.ObjectPath(id).IsValid() {
			return dbus.ObjectPath(id)
		}
	}
	return ""
}
