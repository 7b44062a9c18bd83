package player

import (
	"fmt"
	"sync"
)

const coverIndex = -1

// Position identifies where the reader is: the cover, or a zero-based page
// index. It is the single authoritative notion of "where we are".
type Position struct {
	index int
}

// PositionCover is the cover position.
var PositionCover = Position{index: coverIndex}

// PositionPage returns the position for page i (zero-based).
func PositionPage(i int) Position {
	return Position{index: i}
}

func (p Position) IsCover() bool {
	return p.index == coverIndex
}

// Page returns the zero-based page index. Only meaningful when !IsCover().
func (p Position) Page() int {
	return p.index
}

func (p Position) String() string {
	if p.IsCover() {
		return "cover"
	}
	return fmt.Sprintf("page %d", p.index+1)
}

// NavFunc observes every successful cursor move, synchronously, before the
// move returns.
type NavFunc func(canBack, canForward bool, label string)

// Cursor tracks the current position within one storybook and derives the
// navigation affordances. Other components query it; none cache it.
type Cursor struct {
	mu       sync.Mutex
	pages    int
	pos      Position
	onChange NavFunc
}

// NewCursor returns a cursor over a book with pageCount pages, initialised
// at the cover. pageCount may be zero; such a book simply has nowhere to go.
func NewCursor(pageCount int, onChange NavFunc) *Cursor {
	return &Cursor{pages: pageCount, pos: PositionCover, onChange: onChange}
}

func (c *Cursor) Current() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *Cursor) CanGoBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canGoBack()
}

func (c *Cursor) CanGoForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canGoForward()
}

func (c *Cursor) canGoBack() bool {
	return !c.pos.IsCover()
}

func (c *Cursor) canGoForward() bool {
	return c.pos.index < c.pages-1
}

// Back moves one step cover-ward. No-op at the cover. Reports whether the
// cursor moved.
func (c *Cursor) Back() bool {
	c.mu.Lock()
	if !c.canGoBack() {
		c.mu.Unlock()
		return false
	}
	c.pos.index--
	c.notifyAndUnlock()
	return true
}

// Forward moves one step toward the last page. No-op at the last page (or,
// for an empty book, always). Reports whether the cursor moved.
func (c *Cursor) Forward() bool {
	c.mu.Lock()
	if !c.canGoForward() {
		c.mu.Unlock()
		return false
	}
	c.pos.index++
	c.notifyAndUnlock()
	return true
}

// Label renders the position for display, e.g. "Cover" or "Page 3 of 10".
func (c *Cursor) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label()
}

func (c *Cursor) label() string {
	if c.pos.IsCover() {
		return "Cover"
	}
	return fmt.Sprintf("Page %d of %d", c.pos.index+1, c.pages)
}

func (c *Cursor) notifyAndUnlock() {
	fn := c.onChange
	canBack, canForward, label := c.canGoBack(), c.canGoForward(), c.label()
	c.mu.Unlock()
	if fn != nil {
		fn(canBack, canForward, label)
	}
}
