package domain

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

type LocationState string

const (
	LocationIdle    LocationState = "idle"
	LocationLoading LocationState = "loading"
	LocationGranted LocationState = "granted"
	LocationDenied  LocationState = "denied"
	LocationError   LocationState = "error"
)

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

type Address struct {
	District  string
	Subregion string
	City      string
}

// RegionName picks the most specific populated field.
func (a Address) RegionName() string {
	switch {
	case a.District != "":
		return a.District
	case a.Subregion != "":
		return a.Subregion
	default:
		return a.City
	}
}
