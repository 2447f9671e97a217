package models

// HourlyForecast is one hourly record as returned by the One Call API.
type HourlyForecast struct {
	Dt      int64       `json:"dt"`
	Temp    float64     `json:"temp"`
	Pop     float64     `json:"pop"`
	Weather []Condition `json:"weather"`
}

// Condition is a single weather condition; only the icon code is used for display.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Forecast is the subset of a One Call response needed for one render pass.
type Forecast struct {
	Hourly         []HourlyForecast
	CurrentTime    int64 // epoch seconds, UTC
	TimezoneOffset int64 // seconds east of UTC
}

// LocalNow returns the current time shifted by the timezone offset, still as epoch seconds.
func (f Forecast) LocalNow() int64 {
	return f.CurrentTime + f.TimezoneOffset
}

// FormattedHour is a normalized hourly record ready for layout.
type FormattedHour struct {
	Time int64   `json:"time"`
	Hour int     `json:"hour"` // 0..23 local
	Temp float64 `json:"temp"`
	Icon string  `json:"icon"`
	Pop  float64 `json:"pop"`
}
