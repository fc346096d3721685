package controller

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sweeney/envclock/internal/display"
	"github.com/sweeney/envclock/internal/menu"
	"github.com/sweeney/envclock/internal/sensor"
)

// OLED layout. Rows are 12 px apart to fit the 7x13 font; the 38 px splash
// fills the rest of the panel below two rows of text.
const (
	rowHeight   = 12
	splashY     = 2*rowHeight + 2
	menuTitle   = "Menu"
	selectedTag = "> "
)

// Shown when no sensor reading is available.
const (
	placeholderValue   = "--.-"
	placeholderSegment = "----"
)

var menuRule = strings.Repeat("-", display.OLEDWidth/7)

func drawMenu(g display.Graphic, m *menu.Menu) error {
	g.Clear()
	g.DrawText(0, 0, menuTitle)
	g.DrawText(0, rowHeight, menuRule)
	for i, mode := range m.Items() {
		label := mode.String()
		if i == m.Index() {
			label = selectedTag + label
		}
		g.DrawText(0, (i+2)*rowHeight, label)
	}
	return g.Flush()
}

// clockLines formats the two text rows of the clock view.
func clockLines(t time.Time) (string, string) {
	return t.Format("2006-01-02") + "   " + t.Format("Mon"), t.Format("15:04:05")
}

func drawClock(g display.Graphic, seg display.Segment, splash *display.Bitmap, t time.Time) error {
	date, clock := clockLines(t)
	g.Clear()
	g.DrawText(0, 0, date)
	g.DrawText(0, rowHeight, clock)
	g.DrawBitmap(0, splashY, splash)
	return errors.Join(
		g.Flush(),
		seg.ShowPair(t.Minute(), t.Second(), true),
	)
}

// environmentLines formats the reading, or placeholders for nil.
func environmentLines(r *sensor.Reading) (string, string) {
	temp, hum := placeholderValue, placeholderValue
	if r != nil {
		temp = fmt.Sprintf("%.1f", r.TemperatureC)
		hum = fmt.Sprintf("%.1f", r.RelativeHumidity)
	}
	return "Temp: " + temp + " C", "Hum: " + hum + " %"
}

func drawEnvironment(g display.Graphic, lcd display.Character, seg display.Segment, r *sensor.Reading) error {
	temp, hum := environmentLines(r)
	g.Clear()
	g.DrawText(0, 0, temp)
	g.DrawText(0, rowHeight, hum)

	var segErr error
	if r != nil {
		segErr = seg.ShowPair(int(math.Round(r.TemperatureC)), int(math.Round(r.RelativeHumidity)), false)
	} else {
		segErr = seg.Show(placeholderSegment, false)
	}
	return errors.Join(
		g.Flush(),
		lcd.Clear(),
		lcd.WriteString(temp+"\n"+hum),
		segErr,
	)
}

// blankPeripherals clears the mode-specific outputs on the LCD and
// segment display.
func blankPeripherals(lcd display.Character, seg display.Segment) error {
	return errors.Join(lcd.Clear(), seg.Blank())
}
