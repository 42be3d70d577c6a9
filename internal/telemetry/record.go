package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord is returned when a payload cannot be decoded.
var ErrMalformedRecord = errors.New("telemetry: malformed record")

// Record is one telemetry sample. It is immutable once constructed and
// carries no identity beyond its counter and timestamp.
type Record struct {
	// Temperature in degrees Celsius.
	Temperature float64

	// Humidity as relative humidity percentage.
	Humidity float64

	// Count is the producer's monotonic sample counter.
	Count uint32

	// Timestamp is when the sample was taken.
	Timestamp time.Time
}

// Encode serialises the record as compact self-describing key=value text:
//
//	temp=22.50,hum=55.00,count=7,ts=1724968800000
//
// Temperature and humidity are fixed to two decimal places; the timestamp
// is milliseconds since the Unix epoch. Decode reverses the encoding
// exactly at that precision.
func (r Record) Encode() []byte {
	return fmt.Appendf(nil, "temp=%.2f,hum=%.2f,count=%d,ts=%d",
		r.Temperature,
		r.Humidity,
		r.Count,
		r.Timestamp.UnixMilli(),
	)
}

// Decode parses a payload produced by Encode.
//
// Unknown keys are ignored so the format can grow; missing required keys
// or unparseable values return ErrMalformedRecord.
//
// Parameters:
//   - payload: Raw message payload
//
// Returns:
//   - Record: Decoded record
//   - error: ErrMalformedRecord (wrapped) if the payload is not valid
func Decode(payload []byte) (Record, error) {
	var rec Record
	var haveTemp, haveHum, haveCount bool

	for _, field := range strings.Split(string(payload), ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Record{}, fmt.Errorf("%w: field %q", ErrMalformedRecord, field)
		}

		switch key {
		case "temp":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Record{}, fmt.Errorf("%w: temp: %w", ErrMalformedRecord, err)
			}
			rec.Temperature = f
			haveTemp = true
		case "hum":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Record{}, fmt.Errorf("%w: hum: %w", ErrMalformedRecord, err)
			}
			rec.Humidity = f
			haveHum = true
		case "count":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Record{}, fmt.Errorf("%w: count: %w", ErrMalformedRecord, err)
			}
			rec.Count = uint32(n)
			haveCount = true
		case "ts":
			ms, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Record{}, fmt.Errorf("%w: ts: %w", ErrMalformedRecord, err)
			}
			rec.Timestamp = time.UnixMilli(ms).UTC()
		}
	}

	if !haveTemp || !haveHum || !haveCount {
		return Record{}, fmt.Errorf("%w: missing required fields", ErrMalformedRecord)
	}

	return rec, nil
}
