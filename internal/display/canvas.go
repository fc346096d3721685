package display

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Drawer is the sink a Canvas flushes to. *ssd1306.Dev satisfies it.
type Drawer interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

var face = basicfont.Face7x13

// Canvas is a Graphic backed by a 1-bit framebuffer in the SSD1306 page
// layout. Text coordinates give the top-left corner of the first glyph.
type Canvas struct {
	dst Drawer
	img *image1bit.VerticalLSB
}

// NewCanvas creates a blank canvas of the given size flushing to dst.
func NewCanvas(dst Drawer, width, height int) *Canvas {
	return &Canvas{
		dst: dst,
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, width, height)),
	}
}

// NewOLED initialises the SSD1306 at its default address on bus and returns
// a canvas for it together with the device, which the caller halts on exit.
func NewOLED(bus i2c.Bus) (*Canvas, *ssd1306.Dev, error) {
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = OLEDWidth, OLEDHeight
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, nil, err
	}
	return NewCanvas(dev, OLEDWidth, OLEDHeight), dev, nil
}

// Clear blanks the framebuffer.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// DrawText renders s with its top edge at y.
func (c *Canvas) DrawText(x, y int, s string) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(image1bit.On),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}

// DrawBitmap copies the lit pixels of b with its top-left corner at (x, y).
func (c *Canvas) DrawBitmap(x, y int, b *Bitmap) {
	if b == nil {
		return
	}
	r := c.img.Bounds()
	for by := 0; by < b.Height; by++ {
		for bx := 0; bx < b.Width; bx++ {
			if !b.At(bx, by) {
				continue
			}
			if p := image.Pt(x+bx, y+by); p.In(r) {
				c.img.SetBit(p.X, p.Y, image1bit.On)
			}
		}
	}
}

// Flush pushes the framebuffer to the device.
func (c *Canvas) Flush() error {
	return c.dst.Draw(c.img.Bounds(), c.img, image.Point{})
}

// Lit reports whether the pixel at (x, y) is on in the framebuffer.
func (c *Canvas) Lit(x, y int) bool {
	return bool(c.img.BitAt(x, y))
}
