package models

import (
	"fmt"
	"strings"
)

// Unit is the temperature unit used for display.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// Symbol returns the suffix letter shown after the degree sign.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

func (u Unit) String() string {
	return string(u)
}

// ParseUnit accepts the persisted names plus the short and API style aliases.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c", "metric":
		return Celsius, nil
	case "fahrenheit", "f", "imperial":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown temperature unit %q", s)
}
