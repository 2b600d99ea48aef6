package leds

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/i474232898/weatherpi/internal/colors"
)

var (
	green  = colors.RGB{G: 255}
	orange = colors.RGB{R: 255, G: 128}
)

func TestMemoryDriver_SetFrame(t *testing.T) {
	d := NewMemoryDriver(Count)
	d.SetFrame(context.Background(), Frame{{Color: green, Lit: true}, {Color: orange, Lit: true}, {}, {Color: green, Lit: true}})

	got := d.Snapshot()
	if len(got) != Count {
		t.Fatalf("expected %d pixels, got %d", Count, len(got))
	}
	if got[0].Color != green || !got[0].Lit {
		t.Errorf("led 0 = %+v", got[0])
	}
	if got[2].Lit {
		t.Errorf("led 2 should be unlit")
	}

	// A shorter frame leaves the remaining LEDs alone.
	d.SetFrame(context.Background(), Frame{{Color: orange, Lit: true}})
	got = d.Snapshot()
	if got[0].Color != orange {
		t.Errorf("led 0 = %+v, want orange", got[0])
	}
	if got[3].Color != green || !got[3].Lit {
		t.Errorf("led 3 changed to %+v", got[3])
	}
	if d.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", d.Frames())
	}
}

func TestMemoryDriver_SnapshotIsCopy(t *testing.T) {
	d := NewMemoryDriver(2)
	snap := d.Snapshot()
	snap[0] = Pixel{Color: green, Lit: true}

	if d.Snapshot()[0].Lit {
		t.Fatal("snapshot mutation leaked into driver")
	}
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewMemoryDriver(Count), NewMemoryDriver(Count)
	Multi{a, b}.SetFrame(context.Background(), Frame{{Color: green, Lit: true}})

	for i, d := range []*MemoryDriver{a, b} {
		if d.Frames() != 1 || d.Snapshot()[0].Color != green {
			t.Errorf("driver %d did not receive the frame", i)
		}
	}
}

func TestPixel_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Pixel{Color: orange, Lit: true})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"rgb":[255,128,0],"hex":"#ff8000","lit":true}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestParsePins(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]int
		wantErr bool
	}{
		{"17,27,22", [3]int{17, 27, 22}, false},
		{" 5, 6 ,13", [3]int{5, 6, 13}, false},
		{"17,27", [3]int{}, true},
		{"17,x,22", [3]int{}, true},
		{"17,-1,22", [3]int{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePins(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePins(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePins(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func newTestPins() (RGBPins, [3]*gpiotest.Pin) {
	r := &gpiotest.Pin{N: "GPIO17", Num: 17}
	g := &gpiotest.Pin{N: "GPIO27", Num: 27}
	b := &gpiotest.Pin{N: "GPIO22", Num: 22}
	return RGBPins{r, g, b}, [3]*gpiotest.Pin{r, g, b}
}

func TestGPIODriver_Levels(t *testing.T) {
	pins, raw := newTestPins()
	d := NewGPIODriver([]RGBPins{pins})

	d.SetFrame(context.Background(), Frame{{Color: orange, Lit: true}})

	if raw[0].L != gpio.High {
		t.Errorf("red should be driven high")
	}
	if raw[1].D != Duty(128) {
		t.Errorf("green duty = %v, want %v", raw[1].D, Duty(128))
	}
	if raw[2].L != gpio.Low {
		t.Errorf("blue should be driven low")
	}
}

func TestGPIODriver_UnlitSwitchesOff(t *testing.T) {
	pins, raw := newTestPins()
	d := NewGPIODriver([]RGBPins{pins})

	d.SetFrame(context.Background(), Frame{{Color: colors.RGB{R: 255, G: 255, B: 255}, Lit: true}})
	d.SetFrame(context.Background(), Frame{{Color: colors.RGB{R: 255, G: 255, B: 255}, Lit: false}})

	for i, p := range raw {
		if p.L != gpio.Low {
			t.Errorf("channel %d still on", i)
		}
	}
}

func TestDuty(t *testing.T) {
	if Duty(0) != 0 {
		t.Errorf("Duty(0) = %v", Duty(0))
	}
	if Duty(255) != gpio.DutyMax {
		t.Errorf("Duty(255) = %v, want %v", Duty(255), gpio.DutyMax)
	}
	if Duty(64) >= Duty(128) {
		t.Errorf("duty must grow with level")
	}
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaDriver_PublishesFrame(t *testing.T) {
	w := &fakeWriter{}
	d := newKafkaDriver(w, "kitchen")
	d.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	d.SetFrame(context.Background(), Frame{{Color: green, Lit: true}, {}})

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "kitchen" {
		t.Errorf("key = %q", w.msgs[0].Key)
	}

	var got struct {
		Device    string    `json:"device"`
		AppliedAt time.Time `json:"applied_at"`
		Pixels    []struct {
			Hex string `json:"hex"`
			Lit bool   `json:"lit"`
		} `json:"pixels"`
	}
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Device != "kitchen" || len(got.Pixels) != 2 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.Pixels[0].Hex != "#00ff00" || !got.Pixels[0].Lit || got.Pixels[1].Lit {
		t.Errorf("unexpected pixels %+v", got.Pixels)
	}
}

func TestKafkaDriver_WriteErrorIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	d := newKafkaDriver(w, "kitchen")

	// Must not panic; the error is only logged.
	d.SetFrame(context.Background(), Frame{{Color: green, Lit: true}})
	if len(w.msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(w.msgs))
	}
}
