package geocode

import "ndako/models"

// cityCenter is the map default for Kinshasa.
var cityCenter = models.Coordinates{Latitude: -4.3276, Longitude: 15.3136}

// districtCentroids are coarse positions for Kinshasa's four districts.
var districtCentroids = map[string]models.Coordinates{
	"Funa":      {Latitude: -4.3614, Longitude: 15.3108},
	"Lukunga":   {Latitude: -4.3497, Longitude: 15.2512},
	"Mont-Amba": {Latitude: -4.3893, Longitude: 15.3345},
	"Tshangu":   {Latitude: -4.3997, Longitude: 15.4223},
}

// FallbackPoint returns a district-level coordinate for listings whose
// address could not be geocoded. Unknown districts fall back to the city
// center.
func FallbackPoint(district string) models.Coordinates {
	if coords, ok := districtCentroids[district]; ok {
		return coords
	}
	return cityCenter
}
