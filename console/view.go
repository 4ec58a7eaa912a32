// Package console is the terminal front end: a View that prints to a writer
// and a command loop that drives a session.
package console

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"weather-client/models"
	"weather-client/present"
	"weather-client/session"
)

// View prints session updates to a writer. Calls may come from several
// goroutines; output lines are not interleaved.
type View struct {
	out   io.Writer
	mutex sync.Mutex
	unit  models.Unit
}

// NewView creates a view writing to out
func NewView(out io.Writer) *View {
	return &View{out: out, unit: models.Celsius}
}

func (v *View) SetLoading(on bool) {
	if !on {
		return
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	fmt.Fprintln(v.out, "Loading...")
}

func (v *View) ShowError(msg string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	fmt.Fprintf(v.out, "Error: %s\n", msg)
}

// ClearError is a no-op; printed errors scroll away.
func (v *View) ClearError() {}

func (v *View) Render(d present.Display) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	writeDisplay(v.out, d)
}

func (v *View) SetSearchText(city string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	fmt.Fprintf(v.out, "Location: %s\n", city)
}

func (v *View) SetUnit(u models.Unit) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	if u == v.unit {
		return
	}
	v.unit = u
	fmt.Fprintf(v.out, "Units: °%s\n", u.Symbol())
}

func writeDisplay(out io.Writer, d present.Display) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, d.City)
	if d.DateTime != "" {
		fmt.Fprintln(out, d.DateTime)
	}
	fmt.Fprintf(out, "%s  %s  [%s]\n", d.Temperature, d.Description, d.Icon)
	fmt.Fprintf(out, "Feels like %s | Humidity %s | Wind %s | Pressure %s\n",
		d.FeelsLike, d.Humidity, d.Wind, d.Pressure)

	if len(d.Forecast) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range d.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t%s / %s\t%s\t[%s]\n", day.Day, day.Date, day.High, day.Low, day.Description, day.Icon)
	}
	tw.Flush()
}

var _ session.View = (*View)(nil)
