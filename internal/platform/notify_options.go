package platform

import "time"

// AppName identifies the sender of notifications.
const AppName = "damagemark"

// DefaultTimeout is how long a notification stays up when Options leaves it
// unset.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is the display duration where the platform honours it.
	Timeout time.Duration
}

func (o Options) timeoutMillis() int32 {
	if o.Timeout <= 0 {
		return int32(DefaultTimeout / time.Millisecond)
	}
	return int32(o.Timeout / time.Millisecond)
}
