//go:build linux || freebsd || openbsd || netbsd || dragonfly

package device

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

var errNoScreen = errors.New("no X11 screen available")

// DisplayWidth returns the width in pixels of the primary monitor, falling
// back to the width of the default X11 screen when RandR is unavailable.
func DisplayWidth() (int, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return 0, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return 0, errNoScreen
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return 0, errNoScreen
	}
	if w, err := primaryMonitorWidth(conn, screen.Root); err == nil && w > 0 {
		return w, nil
	}
	return int(screen.WidthInPixels), nil
}

func primaryMonitorWidth(conn *xgb.Conn, root xproto.Window) (int, error) {
	if err := randr.Init(conn); err != nil {
		return 0, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return 0, fmt.Errorf("randr screen resources: %w", err)
	}
	primary := randr.Output(0)
	if reply, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = reply.Output
	}
	first := 0
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if output == primary {
			return int(crtc.Width), nil
		}
		if first == 0 {
			first = int(crtc.Width)
		}
	}
	if first == 0 {
		return 0, errNoScreen
	}
	return first, nil
}
