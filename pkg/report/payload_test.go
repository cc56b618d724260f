package report

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/sensornode/pkg/reading"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		reading reading.Reading
		want    string
	}{
		{
			name:    "reference reading",
			reading: reading.Reading{Temperature: 21.5, Humidity: 48.0, Motion: true},
			want:    `{"temp":21.5,"humid":48.0,"motion":1}`,
		},
		{
			name:    "zero state before first sample",
			reading: reading.Reading{},
			want:    `{"temp":0.0,"humid":0.0,"motion":0}`,
		},
		{
			name:    "negative temperature",
			reading: reading.Reading{Temperature: -7.25, Humidity: 91.5},
			want:    `{"temp":-7.25,"humid":91.5,"motion":0}`,
		},
		{
			name:    "float32 keeps shortest form",
			reading: reading.Reading{Temperature: 23.1, Humidity: 40.7, Motion: true},
			want:    `{"temp":23.1,"humid":40.7,"motion":1}`,
		},
		{
			name:    "timestamp is not submitted",
			reading: reading.Reading{Temperature: 1, Humidity: 2, Timestamp: time.Now()},
			want:    `{"temp":1.0,"humid":2.0,"motion":0}`,
		},
		{
			name:    "NaN encodes as null",
			reading: reading.Reading{Temperature: math32.NaN(), Humidity: 2},
			want:    `{"temp":null,"humid":2.0,"motion":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.reading)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := reading.Reading{Temperature: 21.5, Humidity: 48.0, Motion: true}

	data, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, `{"temp":21.5,"humid":48.0,"motion":1}`, string(data))

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    reading.Reading
		wantErr bool
	}{
		{
			name: "integers accepted",
			data: `{"temp":20,"humid":50,"motion":0}`,
			want: reading.Reading{Temperature: 20, Humidity: 50},
		},
		{
			name:    "motion out of range",
			data:    `{"temp":20.0,"humid":50.0,"motion":2}`,
			wantErr: true,
		},
		{
			name:    "not a number",
			data:    `{"temp":"warm","humid":50.0,"motion":0}`,
			wantErr: true,
		},
		{
			name:    "truncated",
			data:    `{"temp":20.0,`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecimal_Null(t *testing.T) {
	got, err := Decode([]byte(`{"temp":null,"humid":null,"motion":1}`))
	require.NoError(t, err)
	assert.True(t, math32.IsNaN(got.Temperature))
	assert.True(t, math32.IsNaN(got.Humidity))
	assert.True(t, got.Motion)
}
