package display

import (
	"strings"
	"sync"
)

// Text is one DrawText call.
type Text struct {
	X, Y int
	S    string
}

// Frame is what was drawn between a Clear and a Flush.
type Frame struct {
	Texts   []Text
	Bitmaps int
}

// Lines returns the drawn strings in call order.
func (f Frame) Lines() []string {
	out := make([]string, len(f.Texts))
	for i, t := range f.Texts {
		out[i] = t.S
	}
	return out
}

// Contains reports whether any drawn string contains sub.
func (f Frame) Contains(sub string) bool {
	for _, t := range f.Texts {
		if strings.Contains(t.S, sub) {
			return true
		}
	}
	return false
}

// FakeGraphic records flushed frames.
type FakeGraphic struct {
	mu       sync.Mutex
	cur      Frame
	frames   []Frame
	FlushErr error
}

func (g *FakeGraphic) Clear() {
	g.mu.Lock()
	g.cur = Frame{}
	g.mu.Unlock()
}

func (g *FakeGraphic) DrawText(x, y int, s string) {
	g.mu.Lock()
	g.cur.Texts = append(g.cur.Texts, Text{X: x, Y: y, S: s})
	g.mu.Unlock()
}

func (g *FakeGraphic) DrawBitmap(x, y int, b *Bitmap) {
	g.mu.Lock()
	g.cur.Bitmaps++
	g.mu.Unlock()
}

func (g *FakeGraphic) Flush() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := Frame{Texts: append([]Text(nil), g.cur.Texts...), Bitmaps: g.cur.Bitmaps}
	g.frames = append(g.frames, f)
	return g.FlushErr
}

// Frames returns a copy of every flushed frame.
func (g *FakeGraphic) Frames() []Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Frame(nil), g.frames...)
}

// Last returns the most recent flushed frame, or an empty one.
func (g *FakeGraphic) Last() Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.frames) == 0 {
		return Frame{}
	}
	return g.frames[len(g.frames)-1]
}

// FakeCharacter records LCD output.
type FakeCharacter struct {
	mu     sync.Mutex
	text   strings.Builder
	clears int
	Err    error
}

func (c *FakeCharacter) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
	c.text.Reset()
	return c.Err
}

func (c *FakeCharacter) WriteString(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.WriteString(s)
	return c.Err
}

// Text returns everything written since the last Clear.
func (c *FakeCharacter) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// Clears returns the number of Clear calls.
func (c *FakeCharacter) Clears() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}

// SegmentWrite is one recorded segment display update. Blank writes have
// an empty Text.
type SegmentWrite struct {
	Text  string
	Colon bool
}

// FakeSegment records segment display updates.
type FakeSegment struct {
	mu     sync.Mutex
	writes []SegmentWrite
	Err    error
}

func (s *FakeSegment) Show(text string, colon bool) error {
	if _, err := Encode(text, colon); err != nil {
		return err
	}
	s.record(SegmentWrite{Text: text, Colon: colon})
	return s.Err
}

func (s *FakeSegment) ShowPair(hi, lo int, colon bool) error {
	return s.Show(FormatPair(hi, lo), colon)
}

func (s *FakeSegment) Blank() error {
	s.record(SegmentWrite{})
	return s.Err
}

func (s *FakeSegment) record(w SegmentWrite) {
	s.mu.Lock()
	s.writes = append(s.writes, w)
	s.mu.Unlock()
}

// Writes returns a copy of every update.
func (s *FakeSegment) Writes() []SegmentWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SegmentWrite(nil), s.writes...)
}

// Last returns the most recent update, or the zero value.
func (s *FakeSegment) Last() SegmentWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return SegmentWrite{}
	}
	return s.writes[len(s.writes)-1]
}
