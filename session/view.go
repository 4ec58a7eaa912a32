package session

import (
	"weather-client/models"
	"weather-client/present"
)

// View is the display the session drives.
type View interface {
	// SetLoading toggles the loading indicator
	SetLoading(on bool)

	// ShowError replaces the error message slot
	ShowError(msg string)

	// ClearError hides the error message slot
	ClearError()

	// Render replaces every labeled field at once
	Render(d present.Display)

	// SetSearchText fills the search box, e.g. with a geolocated city
	SetSearchText(city string)

	// SetUnit marks the active unit
	SetUnit(u models.Unit)
}

// NopView discards everything.
type NopView struct{}

func (NopView) SetLoading(bool) {}
func (NopView) ShowError(string) {}
func (NopView) ClearError() {}
func (NopView) Render(present.Display) {}
func (NopView) SetSearchText(string) {}
func (NopView) SetUnit(models.Unit) {}

var _ View = NopView{}
