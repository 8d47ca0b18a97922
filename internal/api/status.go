package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"animestudio/internal/jsonutil"
)

// ComponentState is the install state of one dependency or model.
type ComponentState struct {
	Installed bool    `json:"installed"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message"`
}

// Percent returns Progress clamped to [0,100].
func (s ComponentState) Percent() float64 {
	return ClampProgress(s.Progress)
}

// Component is a named entry of Components.
type Component struct {
	Name string
	ComponentState
}

// Components is a JSON object of named install states that keeps document order.
type Components []Component

// AllInstalled reports whether every component is installed. Empty sets count as installed.
func (c Components) AllInstalled() bool {
	for _, comp := range c {
		if !comp.Installed {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes an object, keeping member order. A repeated key keeps
// its first position and its last value, as encoding/json would for the value.
func (c *Components) UnmarshalJSON(data []byte) error {
	if jsonutil.IsNull(data) {
		*c = nil
		return nil
	}
	out := Components{}
	index := make(map[string]int)
	err := jsonutil.DecodeObjectInOrder(data, func(key string, raw json.RawMessage) error {
		var st ComponentState
		if err := json.Unmarshal(raw, &st); err != nil {
			return fmt.Errorf("component %q: %w", key, err)
		}
		if i, ok := index[key]; ok {
			out[i].ComponentState = st
			return nil
		}
		index[key] = len(out)
		out = append(out, Component{Name: key, ComponentState: st})
		return nil
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalJSON encodes the components as an object in slice order.
func (c Components) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, comp := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(comp.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(comp.ComponentState)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OverallStatus is the aggregate the backend derives from every component.
type OverallStatus struct {
	Ready    bool    `json:"ready"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// Percent returns Progress clamped to [0,100].
func (o OverallStatus) Percent() float64 {
	return ClampProgress(o.Progress)
}

// StatusSnapshot is the body of GET /status. It is only ever replaced whole.
type StatusSnapshot struct {
	Dependencies Components    `json:"dependencies"`
	Models       Components    `json:"models"`
	Overall      OverallStatus `json:"overall_status"`
}

// Ready reports the backend's readiness flag.
func (s StatusSnapshot) Ready() bool {
	return s.Overall.Ready
}

// InitialStatus is shown before the first status response arrives.
func InitialStatus() StatusSnapshot {
	notInstalled := ComponentState{Message: "Not installed"}
	return StatusSnapshot{
		Dependencies: Components{
			{Name: "stable_diffusion", ComponentState: notInstalled},
			{Name: "control_net", ComponentState: notInstalled},
			{Name: "face_id", ComponentState: notInstalled},
		},
		Models: Components{
			{Name: "anime_model", ComponentState: notInstalled},
			{Name: "real_dream_pony", ComponentState: notInstalled},
			{Name: "controlnet_openpose", ComponentState: notInstalled},
		},
		Overall: OverallStatus{Message: "Loading..."},
	}
}

// ClampProgress bounds p to [0,100]; NaN becomes 0.
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
