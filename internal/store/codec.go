package store

import (
	"encoding/json"
	"fmt"

	"github.com/i474232898/weatherpi/internal/weather"
)

// encodeRecord is the on-medium representation shared by every backend.
func encodeRecord(rec weather.Record) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (weather.Record, error) {
	var rec weather.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return weather.Record{}, fmt.Errorf("%w: %w", weather.ErrCacheCorrupt, err)
	}
	return rec, nil
}
