package model

// Placement positions moved items relative to an anchor item
type Placement int

const (
	PlaceBefore Placement = iota
	PlaceAfter
	// PlaceInside appends to the anchor's children
	PlaceInside
)

func (p Placement) String() string {
	switch p {
	case PlaceAfter:
		return "after"
	case PlaceInside:
		return "inside"
	default:
		return "before"
	}
}
