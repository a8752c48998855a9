package geo

import "strings"

// cityCentroids holds approximate centres for the cities the directory covers.
// Keys are lowercase, diacritic-free city names.
var cityCentroids = map[string]Point{
	"prishtina": {Lat: 42.6629, Lng: 21.1655},
	"prishtine": {Lat: 42.6629, Lng: 21.1655},
	"pristina":  {Lat: 42.6629, Lng: 21.1655},
	"prizren":   {Lat: 42.2139, Lng: 20.7397},
	"peja":      {Lat: 42.6593, Lng: 20.2887},
	"peje":      {Lat: 42.6593, Lng: 20.2887},
	"gjakova":   {Lat: 42.3803, Lng: 20.4308},
	"gjakove":   {Lat: 42.3803, Lng: 20.4308},
	"ferizaj":   {Lat: 42.3702, Lng: 21.1553},
	"gjilan":    {Lat: 42.4635, Lng: 21.4694},
	"mitrovica": {Lat: 42.8914, Lng: 20.8660},
	"mitrovice": {Lat: 42.8914, Lng: 20.8660},
	"podujeva":  {Lat: 42.9106, Lng: 21.1931},
	"vushtrri":  {Lat: 42.8231, Lng: 20.9675},
}

// CityCentroid looks up the centre of a known city. The name must already be
// folded to lowercase ASCII.
func CityCentroid(foldedCity string) (Point, bool) {
	p, ok := cityCentroids[strings.TrimSpace(foldedCity)]
	return p, ok
}
