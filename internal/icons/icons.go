// Package icons resolves OpenWeather condition codes to sprite sheet indexes.
package icons

// Wildcard is the third-character marker matching any day/night variant.
const Wildcard = 'X'

// Missing is the sprite index used when a code has no mapping. Renderers draw a
// placeholder glyph for it.
const Missing = -1

// Map maps 3-character patterns to sprite indexes. Values are never modified after construction.
type Map map[string]int

// Default is the mapping for the 20px weather sprite sheet. Clear and few-clouds have
// separate night sprites; every other condition shares one sprite for day and night.
var Default = Map{
	"01d": 0,
	"01n": 9,
	"02d": 1,
	"02n": 10,
	"03X": 2,
	"04X": 3,
	"09X": 4,
	"10X": 5,
	"11X": 6,
	"13X": 7,
	"50X": 8,
}

// Resolve returns the sprite index for code. An exact key wins over the wildcard key
// sharing its first two characters. ok is false when neither exists or code is not
// three characters long.
func (m Map) Resolve(code string) (index int, ok bool) {
	if len(code) != 3 {
		return Missing, false
	}
	if idx, found := m[code]; found {
		return idx, true
	}
	if idx, found := m[code[:2]+string(Wildcard)]; found {
		return idx, true
	}
	return Missing, false
}

// Len reports the number of sprites addressed by the map (highest index + 1).
func (m Map) Len() int {
	n := 0
	for _, idx := range m {
		if idx+1 > n {
			n = idx + 1
		}
	}
	return n
}
