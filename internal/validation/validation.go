package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrLatitudeRange is returned when latitude is outside [-90, 90].
var ErrLatitudeRange = errors.New("latitude out of range")

// ErrLongitudeRange is returned when longitude is outside [-180, 180].
var ErrLongitudeRange = errors.New("longitude out of range")

// ErrCoordinateSyntax is returned when a coordinate string is not a finite number.
var ErrCoordinateSyntax = errors.New("coordinate is not a number")

// ValidateCoordinates enforces WGS84 bounds. NaN and infinities are rejected as out of range.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// ParseCoordinates trims and parses a latitude/longitude pair, then validates the bounds.
// Used for query-string overrides on the preview endpoint.
func ParseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := parseCoordinate(latStr)
	if err != nil {
		return 0, 0, err
	}
	lon, err := parseCoordinate(lonStr)
	if err != nil {
		return 0, 0, err
	}
	if err := ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, ErrCoordinateSyntax
	}
	return v, nil
}
