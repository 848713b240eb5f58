// Package osm fetches street, water and park geometry from the Overpass
// API.
package osm

import "math"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Way is an ordered polyline with its OSM highway class.
type Way struct {
	Highway string
	Points  []Point
}

// Polygon is a closed ring of coordinates.
type Polygon []Point

// BBox is a south/west/north/east bounding box in degrees.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BBoxAround computes the bounding box covering dist meters in each
// direction from the center point.
func BBoxAround(center Point, dist int) BBox {
	// Meters per degree of latitude is effectively constant; longitude
	// shrinks with cos(lat).
	const metersPerDegree = 111320.0
	dLat := float64(dist) / metersPerDegree
	dLon := float64(dist) / (metersPerDegree * math.Cos(center.Lat*math.Pi/180))
	return BBox{
		South: center.Lat - dLat,
		West:  center.Lon - dLon,
		North: center.Lat + dLat,
		East:  center.Lon + dLon,
	}
}

// MapData bundles the three layers a poster is drawn from.
type MapData struct {
	Bounds BBox
	Roads  []Way
	Water  []Polygon
	Parks  []Polygon
}
