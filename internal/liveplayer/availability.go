package liveplayer

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/embedplay/embedplay/internal/geoip"
	"github.com/embedplay/embedplay/internal/store"
)

// Device location error codes, matching the shell's geolocation API.
const (
	LocationPermissionDenied = 1
	LocationUnavailable      = 2
	LocationTimeout          = 3
)

// LocationError is a failed device location request.
type LocationError struct {
	Code int
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("device location failed with code %d", e.Code)
}

// DeviceLocator asks the shell for device coordinates, which reaches
// the viewer through the browser's location prompt.
type DeviceLocator interface {
	Location(ctx context.Context) (lat, lon float64, err error)
}

// PermissionProber reports the browser's remembered geolocation
// permission: "prompt", "granted", "denied", or "" where the
// permissions API is unsupported (WebKit).
type PermissionProber interface {
	GeolocationPermission(ctx context.Context) string
}

// AreaChecker answers service-area questions; playerapi.Client
// satisfies it.
type AreaChecker interface {
	IPInServiceArea(ctx context.Context, stationID string) bool
	InServiceArea(ctx context.Context, stationID string, lat, lon float64) bool
}

// Checker runs the livestream availability machine. The IP check runs
// first; only when it says out-of-area (or fails) does the machine
// consider bothering the viewer for device location.
type Checker struct {
	API       AreaChecker
	Locator   DeviceLocator
	Perms     PermissionProber
	Clock     clockwork.Clock
	Dispatch  func(store.Action)
	StationID string

	// Local screening: when a MaxMind database is mounted and the
	// viewer IP is known, an in-region answer skips the backend.
	ClientIP string
	Local    *geoip.Resolver
	Regions  []string
}

func (c *Checker) set(a Availability) {
	c.Dispatch(SetAvailability{Availability: a})
}

// CheckAvailability is the entry point, run once on mount.
func (c *Checker) CheckAvailability(ctx context.Context) {
	c.set(AvailabilityEvaluating)

	if c.Local != nil && c.ClientIP != "" && len(c.Regions) > 0 && c.Local.InRegions(c.ClientIP, c.Regions) {
		c.set(AvailabilitySuccess)
		return
	}

	if c.API.IPInServiceArea(ctx, c.StationID) {
		c.set(AvailabilitySuccess)
		return
	}
	// Out of area by IP, or the check failed. Before prompting, see
	// whether the viewer already answered the location question.
	c.checkSavedPermission(ctx)
}

func (c *Checker) checkSavedPermission(ctx context.Context) {
	switch c.Perms.GeolocationPermission(ctx) {
	case "granted":
		// A remembered Allow bypasses the request screen, but the
		// coordinates still have to land inside the service area.
		c.CheckDeviceLocation(ctx)
	case "prompt", "denied", "":
		c.set(AvailabilityLocationNeeded)
	default:
		c.set(AvailabilityIdle)
	}
}

// CheckDeviceLocation verifies the viewer's device coordinates against
// the service area. Run directly when permission was remembered, or
// after the viewer presses the location-request button.
func (c *Checker) CheckDeviceLocation(ctx context.Context) {
	c.set(AvailabilityEvaluating)

	lat, lon, err := c.Locator.Location(ctx)
	if err != nil {
		if lerr, ok := err.(*LocationError); ok {
			switch lerr.Code {
			case LocationPermissionDenied, LocationUnavailable:
				// Give the prompt UI a beat to dismiss before the
				// denial overlay replaces it.
				c.Clock.Sleep(500 * time.Millisecond)
				c.set(AvailabilityLocationDenied)
				return
			case LocationTimeout:
				c.set(AvailabilityLocationTimedOut)
				return
			}
		}
		c.set(AvailabilityLocationDenied)
		return
	}

	if c.StationID == "" {
		// Without a home station there is no area to check against.
		c.set(AvailabilityLocationDenied)
		return
	}

	if c.API.InServiceArea(ctx, c.StationID, lat, lon) {
		c.set(AvailabilitySuccess)
	} else {
		c.set(AvailabilityRejected)
	}
}

// NewAvailabilityEpic drives the checker from the action stream: the
// full check on mount, the device-location path when the viewer asks
// for it. Checks run off the dispatch goroutine; results come back as
// SetAvailability actions.
func NewAvailabilityEpic(c *Checker) store.Epic {
	return func(a store.Action) []store.Action {
		switch a := a.(type) {
		case Mounted:
			if a.Context != nil && (a.Context.DisableGeolocation || a.Context.Options.DisableGeolocation) {
				return nil
			}
			go c.CheckAvailability(context.Background())
		case RequestLocation:
			go c.CheckDeviceLocation(context.Background())
		}
		return nil
	}
}
