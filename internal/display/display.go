// Package display drives the three output peripherals: the graphical OLED,
// the character LCD and the four digit segment display.
package display

// OLED geometry.
const (
	OLEDWidth  = 128
	OLEDHeight = 64
)

// OLEDAddrs are the two addresses an SSD1306 module can be strapped to.
var OLEDAddrs = []uint16{0x3c, 0x3d}

// Graphic is a buffered pixel display. Drawing calls only touch the buffer;
// Flush pushes it to the panel.
type Graphic interface {
	Clear()
	DrawText(x, y int, s string)
	DrawBitmap(x, y int, b *Bitmap)
	Flush() error
}

// Character is a text-only display. A '\n' in s moves to the next row.
type Character interface {
	Clear() error
	WriteString(s string) error
}

// Segment is a four digit seven-segment display with a centre colon.
type Segment interface {
	Show(text string, colon bool) error
	ShowPair(hi, lo int, colon bool) error
	Blank() error
}
