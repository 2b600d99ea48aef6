package display

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weatherpi/internal/colors"
	"github.com/i474232898/weatherpi/internal/weather"
)

var validate = validator.New()

// ColorSpec is one configured color bucket.
type ColorSpec struct {
	RGB  []int  `json:"rgb" validate:"len=3,dive,gte=0,lte=255"`
	Name string `json:"name"`
}

// Document is the display configuration edited through the config server and read at the
// start of every refresh cycle. Colors are keyed by their dbz threshold as a string.
type Document struct {
	Latitude                float64              `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude               float64              `json:"longitude" validate:"gte=-180,lte=180"`
	ForecastIntervalMinutes int                  `json:"forecast_interval_minutes" validate:"oneof=1 5 15 30"`
	Colors                  map[string]ColorSpec `json:"colors" validate:"required,min=1,dive"`
}

// Location returns the forecast location of the document.
func (d Document) Location() weather.Location {
	return weather.Location{Lat: d.Latitude, Lon: d.Longitude}
}

// Table builds the color table described by the document.
func (d Document) Table() (*colors.Table, error) {
	specs := make(map[string]colors.Spec, len(d.Colors))
	for key, c := range d.Colors {
		var rgb [3]uint8
		for i := 0; i < len(rgb) && i < len(c.RGB); i++ {
			rgb[i] = uint8(c.RGB[i])
		}
		specs[key] = colors.Spec{RGB: rgb, Name: c.Name}
	}
	return colors.FromSpecs(specs)
}

// Validate checks field constraints and that the colors form a usable table.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if _, err := d.Table(); err != nil {
		return err
	}
	return nil
}

// Parse decodes and validates a document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode display config: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("invalid display config: %w", err)
	}
	return doc, nil
}
