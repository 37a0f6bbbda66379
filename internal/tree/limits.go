package tree

import "math"

// Default layout constants.
const (
	DefaultBaseFont   = 16
	DefaultDepthScale = 0.85
	DefaultMinFont    = 10
	DefaultMaxDepth   = 5
)

// Limits holds the layout constants that bound splitting.
// They are fixed for the lifetime of a Model.
type Limits struct {
	BaseFont   int
	DepthScale float64
	MinFont    int
	MaxDepth   int
}

// DefaultLimits returns the stock layout constants.
func DefaultLimits() Limits {
	return Limits{
		BaseFont:   DefaultBaseFont,
		DepthScale: DefaultDepthScale,
		MinFont:    DefaultMinFont,
		MaxDepth:   DefaultMaxDepth,
	}
}

// FontSize returns the title font size for a node at depth.
func (l Limits) FontSize(depth int) int {
	return int(math.Round(float64(l.BaseFont) * math.Pow(l.DepthScale, float64(depth))))
}

// Legible reports whether text at depth is at or above the minimum font size.
func (l Limits) Legible(depth int) bool {
	return l.FontSize(depth) >= l.MinFont
}
