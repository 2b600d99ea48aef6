package leds

import (
	"context"
	"sync"
)

// MemoryDriver keeps the applied state in memory. It stands in for hardware in tests
// and backs the LED state endpoint.
type MemoryDriver struct {
	mu     sync.RWMutex
	pixels []Pixel
	frames int
}

// NewMemoryDriver creates a driver for n LEDs, all unlit.
func NewMemoryDriver(n int) *MemoryDriver {
	return &MemoryDriver{pixels: make([]Pixel, n)}
}

func (d *MemoryDriver) SetFrame(ctx context.Context, frame Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < len(frame) && i < len(d.pixels); i++ {
		d.pixels[i] = frame[i]
	}
	d.frames++
}

// Snapshot returns a copy of the current LED state.
func (d *MemoryDriver) Snapshot() Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(Frame, len(d.pixels))
	copy(out, d.pixels)
	return out
}

// Frames reports how many frames have been applied.
func (d *MemoryDriver) Frames() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}
