package api

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents_PreserveOrderIncludingUnknownKeys(t *testing.T) {
	data := []byte(`{
		"dependencies": {
			"face_id": {"installed": false, "progress": 0, "message": "a"},
			"custom_thing": {"installed": true, "progress": 100, "message": "b"},
			"stable_diffusion": {"installed": false, "progress": 10, "message": "c"}
		},
		"models": {},
		"overall_status": {"ready": true, "progress": 100, "message": "Ready"}
	}`)

	var s StatusSnapshot
	require.NoError(t, json.Unmarshal(data, &s))

	names := make([]string, len(s.Dependencies))
	for i, d := range s.Dependencies {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"face_id", "custom_thing", "stable_diffusion"}, names)
	assert.Empty(t, s.Models)
	assert.True(t, s.Ready())
}

func TestComponents_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	var c Components
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"message":"1"},"b":{},"a":{"message":"2"}}`), &c))
	require.Len(t, c, 2)
	assert.Equal(t, "a", c[0].Name)
	assert.Equal(t, "2", c[0].Message)
}

func TestComponents_MarshalKeepsOrder(t *testing.T) {
	c := Components{
		{Name: "zeta", ComponentState: ComponentState{Progress: 5}},
		{Name: "alpha", ComponentState: ComponentState{Installed: true}},
	}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":{"installed":false,"progress":5,"message":""},"alpha":{"installed":true,"progress":0,"message":""}}`, string(b))

	var back Components
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)
}

func TestComponents_InvalidMember(t *testing.T) {
	var c Components
	err := json.Unmarshal([]byte(`{"a": "not an object"}`), &c)
	assert.Error(t, err)
}

func TestComponents_AllInstalled(t *testing.T) {
	assert.True(t, Components{}.AllInstalled())
	c := Components{{Name: "a", ComponentState: ComponentState{Installed: true}}, {Name: "b"}}
	assert.False(t, c.AllInstalled())
}

func TestClampProgress(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{250, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampProgress(tt.in))
	}
	assert.Equal(t, 100.0, ComponentState{Progress: 140}.Percent())
	assert.Equal(t, 0.0, OverallStatus{Progress: -1}.Percent())
}

func TestInitialStatus(t *testing.T) {
	s := InitialStatus()
	assert.False(t, s.Ready())
	assert.Equal(t, "Loading...", s.Overall.Message)
	require.Len(t, s.Dependencies, 3)
	require.Len(t, s.Models, 3)
	assert.Equal(t, "stable_diffusion", s.Dependencies[0].Name)
	assert.Equal(t, "controlnet_openpose", s.Models[2].Name)
}

func TestTimestamp_ParseFormats(t *testing.T) {
	tests := []struct {
		raw      string
		wantZero bool
	}{
		{"2025-01-02T03:04:05.123456", false},
		{"2025-01-02T03:04:05", false},
		{"2025-01-02T03:04:05Z", false},
		{"2025-01-02T03:04:05.5+02:00", false},
		{"2025-01-02 03:04:05", false},
		{"yesterday", true},
		{"", true},
	}
	for _, tt := range tests {
		ts := ParseTimestamp(tt.raw)
		assert.Equal(t, tt.wantZero, ts.IsZero(), tt.raw)
		assert.Equal(t, tt.raw, ts.Raw)
	}
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	var ch Character
	require.NoError(t, json.Unmarshal([]byte(`{"created_at":"2025-01-02T03:04:05.123456","updated_at":null}`), &ch))
	assert.Equal(t, 2025, ch.CreatedAt.Time.Year())
	assert.True(t, ch.UpdatedAt.IsZero())

	b, err := json.Marshal(ch.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02T03:04:05.123456"`, string(b))

	b, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestTimestamp_OrderingAndEquality(t *testing.T) {
	older := ParseTimestamp("2025-01-01T00:00:00")
	newer := ParseTimestamp("2025-01-01T00:00:01")
	assert.True(t, newer.After(older))
	assert.True(t, older.After(Timestamp{}))
	assert.True(t, older.Equal(ParseTimestamp("2025-01-01T00:00:00")))
	assert.False(t, older.Equal(newer))
	assert.Equal(t, "", Timestamp{}.Format(time.RFC3339))
}
