package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON accepts both the object form {"lat":..,"lng":..} and the
// wire array form [lat, lng] used by agent payloads.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("coordinates: invalid array form: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("coordinates: expected 2 elements, got %d", len(pair))
		}
		c.Lat, c.Lng = pair[0], pair[1]
		return nil
	}
	type plain Coordinates
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("coordinates: invalid object form: %w", err)
	}
	*c = Coordinates(obj)
	return nil
}

// Bounds is a geographic bounding box.
type Bounds struct {
	SouthWest Coordinates `json:"southWest"`
	NorthEast Coordinates `json:"northEast"`
}

// Extend grows the bounds to include the given point.
func (b *Bounds) Extend(c Coordinates) {
	if c.Lat < b.SouthWest.Lat {
		b.SouthWest.Lat = c.Lat
	}
	if c.Lat > b.NorthEast.Lat {
		b.NorthEast.Lat = c.Lat
	}
	if c.Lng < b.SouthWest.Lng {
		b.SouthWest.Lng = c.Lng
	}
	if c.Lng > b.NorthEast.Lng {
		b.NorthEast.Lng = c.Lng
	}
}

// BoundsOf computes the bounding box of a non-empty path. Returns nil for
// an empty path.
func BoundsOf(path []Coordinates) *Bounds {
	if len(path) == 0 {
		return nil
	}
	b := &Bounds{SouthWest: path[0], NorthEast: path[0]}
	for _, p := range path[1:] {
		b.Extend(p)
	}
	return b
}
