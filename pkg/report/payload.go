package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/itohio/sensornode/pkg/reading"
)

// ContentType is the media type of an encoded payload.
const ContentType = "application/json"

// Payload is the submitted record. Field order is fixed by the struct.
type Payload struct {
	Temp   Decimal `json:"temp"`
	Humid  Decimal `json:"humid"`
	Motion int     `json:"motion"` // 0 or 1
}

// Decimal is a float32 that always encodes with a fractional part (48.0, not 48).
// NaN and infinities encode as null.
type Decimal float32

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	f := float32(d)
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return []byte("null"), nil
	}
	b := strconv.AppendFloat(nil, float64(f), 'f', -1, 32)
	if bytes.IndexByte(b, '.') < 0 {
		b = append(b, '.', '0')
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Decimal(math32.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 32)
	if err != nil {
		return fmt.Errorf("invalid decimal %s: %w", b, err)
	}
	*d = Decimal(f)
	return nil
}

// NewPayload converts a reading into its submitted form.
func NewPayload(r reading.Reading) Payload {
	p := Payload{
		Temp:  Decimal(r.Temperature),
		Humid: Decimal(r.Humidity),
	}
	if r.Motion {
		p.Motion = 1
	}
	return p
}

// Encode serializes a reading into a compact JSON record.
func Encode(r reading.Reading) ([]byte, error) {
	return json.Marshal(NewPayload(r))
}

// Decode parses a record produced by Encode. The timestamp is not carried.
func Decode(data []byte) (reading.Reading, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return reading.Reading{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	if p.Motion != 0 && p.Motion != 1 {
		return reading.Reading{}, fmt.Errorf("invalid motion value: %d", p.Motion)
	}
	return reading.Reading{
		Temperature: float32(p.Temp),
		Humidity:    float32(p.Humid),
		Motion:      p.Motion == 1,
	}, nil
}
