package model

import (
	"encoding/json"
	"fmt"
)

// Switch is an actuator state token.
type Switch string

const (
	SwitchOn  Switch = "ON"
	SwitchOff Switch = "OFF"
)

// ControlMode selects who drives the actuators.
type ControlMode string

const (
	ControlModeManual ControlMode = "MANUAL"
	ControlModeAuto   ControlMode = "AUTO"
)

// DefaultDeviceRoot is the tree path under which device states live.
const DefaultDeviceRoot = "users"

// Top level device state keys.
const (
	DeviceFieldName        = "name"
	DeviceFieldEnvironment = "environment"
	DeviceFieldEnergy      = "energy"
)

// Environment holds sensor readings and actuator modes.
type Environment struct {
	Humidity    float64     `json:"humidity"`
	Temperature float64     `json:"temperature"`
	WaterLevel  float64     `json:"water_level"`
	PH          float64     `json:"ph"`
	EC          int         `json:"ec"`
	LED         Switch      `json:"led"`
	Ventilation Switch      `json:"ventilation"`
	WaterPump   Switch      `json:"water_pump"`
	AirPump     Switch      `json:"air_pump"`
	ControlMode ControlMode `json:"control_mode"`
}

// Energy holds energy counters.
type Energy struct {
	DailyProduction   float64 `json:"daily_production"`
	EnergyConsumption float64 `json:"energy_consumption"`
	StoredEnergy      float64 `json:"stored_energy"`
}

// DeviceState is the live operational-state subtree of one principal.
type DeviceState struct {
	Name        string      `json:"name"`
	Environment Environment `json:"environment"`
	Energy      Energy      `json:"energy"`
}

// NewDeviceState returns the initial state: every number zero except ec,
// every actuator OFF and manual control.
func NewDeviceState(name string, ec int) DeviceState {
	return DeviceState{
		Name: name,
		Environment: Environment{
			EC:          ec,
			LED:         SwitchOff,
			Ventilation: SwitchOff,
			WaterPump:   SwitchOff,
			AirPump:     SwitchOff,
			ControlMode: ControlModeManual,
		},
	}
}

// DeviceStatePath returns the tree path of a principal's device state.
func DeviceStatePath(root, authUID string) string {
	return JoinPath(root, authUID)
}

// Tree converts the state into a JSON-compatible value tree.
func (s DeviceState) Tree() map[string]any {
	return map[string]any{
		DeviceFieldName: s.Name,
		DeviceFieldEnvironment: map[string]any{
			"humidity":     s.Environment.Humidity,
			"temperature":  s.Environment.Temperature,
			"water_level":  s.Environment.WaterLevel,
			"ph":           s.Environment.PH,
			"ec":           float64(s.Environment.EC),
			"led":          string(s.Environment.LED),
			"ventilation":  string(s.Environment.Ventilation),
			"water_pump":   string(s.Environment.WaterPump),
			"air_pump":     string(s.Environment.AirPump),
			"control_mode": string(s.Environment.ControlMode),
		},
		DeviceFieldEnergy: map[string]any{
			"daily_production":   s.Energy.DailyProduction,
			"energy_consumption": s.Energy.EnergyConsumption,
			"stored_energy":      s.Energy.StoredEnergy,
		},
	}
}

// DeviceStateFromTree decodes a value tree read from the tree store. It fails
// if any top level group is missing.
func DeviceStateFromTree(v any) (DeviceState, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return DeviceState{}, fmt.Errorf("device state is %T, not an object", v)
	}
	for _, key := range []string{DeviceFieldName, DeviceFieldEnvironment, DeviceFieldEnergy} {
		if _, ok := m[key]; !ok {
			return DeviceState{}, fmt.Errorf("device state has no %q field", key)
		}
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return DeviceState{}, fmt.Errorf("failed to marshal device state: %w", err)
	}
	var s DeviceState
	if err := json.Unmarshal(raw, &s); err != nil {
		return DeviceState{}, fmt.Errorf("failed to unmarshal device state: %w", err)
	}

	return s, nil
}
