// package common contains small value types and helpers used throughout the backdrop engine. They are not interface-wrapped structs, just plain
// structs that express commonly used data-types.
package common

import "fmt"

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// NewSize returns a Size with both dimensions clamped to at least 1.
//
// Parameters:
//   - width: the requested width in pixels
//   - height: the requested height in pixels
//
// Returns:
//   - Size: the clamped size
func NewSize(width, height int) Size {
	return Size{Width: max(1, width), Height: max(1, height)}
}

// Area returns the pixel count.
func (s Size) Area() int {
	return s.Width * s.Height
}

// String formats the size as WxH.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
