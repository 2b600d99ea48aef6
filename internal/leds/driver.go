package leds

import (
	"context"
	"encoding/json"

	"github.com/i474232898/weatherpi/internal/colors"
)

// Count is the number of LEDs on the display.
const Count = 4

// Pixel is the state of one LED. An unlit pixel switches the LED off.
type Pixel struct {
	Color colors.RGB
	Lit   bool
}

func (p Pixel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RGB [3]uint8 `json:"rgb"`
		Hex string   `json:"hex"`
		Lit bool     `json:"lit"`
	}{
		RGB: [3]uint8{p.Color.R, p.Color.G, p.Color.B},
		Hex: p.Color.String(),
		Lit: p.Lit,
	})
}

// Frame holds one pixel per LED, soonest forecast first. LEDs past the end of
// the frame keep their previous state.
type Frame []Pixel

// Driver applies frames to a physical or virtual display. Drivers report their own
// errors; a refresh cycle never fails because of the display.
type Driver interface {
	SetFrame(ctx context.Context, frame Frame)
}

// Multi fans a frame out to several drivers in order.
type Multi []Driver

func (m Multi) SetFrame(ctx context.Context, frame Frame) {
	for _, d := range m {
		d.SetFrame(ctx, frame)
	}
}
