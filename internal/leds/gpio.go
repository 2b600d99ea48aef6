package leds

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PWMFrequency is the carrier used for partial channel intensities.
const PWMFrequency = physic.KiloHertz

// RGBPins are the red, green and blue outputs of one LED.
type RGBPins [3]gpio.PinOut

// GPIODriver drives common-cathode RGB LEDs wired to GPIO outputs.
type GPIODriver struct {
	leds []RGBPins
}

// NewGPIODriver creates a driver over already resolved pins.
func NewGPIODriver(leds []RGBPins) *GPIODriver {
	return &GPIODriver{leds: leds}
}

// ParsePins parses an "r,g,b" list of BCM pin numbers.
func ParsePins(s string) ([3]int, error) {
	var pins [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return pins, fmt.Errorf("expected 3 pins in %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return pins, fmt.Errorf("invalid pin %q in %q", p, s)
		}
		pins[i] = n
	}
	return pins, nil
}

// OpenGPIO initialises the host drivers and resolves the BCM pins of every LED.
func OpenGPIO(pinSets [][3]int) (*GPIODriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}

	leds := make([]RGBPins, 0, len(pinSets))
	for i, set := range pinSets {
		var led RGBPins
		for c, n := range set {
			name := "GPIO" + strconv.Itoa(n)
			p := gpioreg.ByName(name)
			if p == nil {
				return nil, fmt.Errorf("led %d: pin %s not found", i, name)
			}
			led[c] = p
		}
		leds = append(leds, led)
	}
	return NewGPIODriver(leds), nil
}

func (d *GPIODriver) SetFrame(ctx context.Context, frame Frame) {
	for i := 0; i < len(frame) && i < len(d.leds); i++ {
		px := frame[i]
		levels := [3]uint8{px.Color.R, px.Color.G, px.Color.B}
		if !px.Lit {
			levels = [3]uint8{}
		}
		for c, pin := range d.leds[i] {
			if err := drive(pin, levels[c]); err != nil {
				slog.ErrorContext(ctx, "failed to drive led", "led", i, "pin", pin.String(), "error", err)
			}
		}
	}
}

func drive(pin gpio.PinOut, level uint8) error {
	switch level {
	case 0:
		return pin.Out(gpio.Low)
	case 255:
		return pin.Out(gpio.High)
	default:
		return pin.PWM(Duty(level), PWMFrequency)
	}
}

// Duty converts an 8-bit channel value to a PWM duty cycle.
func Duty(level uint8) gpio.Duty {
	return gpio.Duty(uint64(level) * uint64(gpio.DutyMax) / 255)
}
