package energy

// Zone is a tariff band of the day.
type Zone string

const (
	ZoneNight   Zone = "night"
	ZonePeak    Zone = "peak"
	ZoneEvening Zone = "evening"
)

// Tariff is the electricity price for one hour, in TL/kWh.
type Tariff struct {
	Hour int     `json:"hour"`
	Rate float64 `json:"rate"`
	Zone Zone    `json:"zone"`
}

// Tariffs is the 24-hour time-of-use price table indexed by hour.
var Tariffs = [24]Tariff{
	{0, 1.5, ZoneNight},
	{1, 1.5, ZoneNight},
	{2, 1.5, ZoneNight},
	{3, 1.5, ZoneNight},
	{4, 1.8, ZoneNight},
	{5, 2.0, ZoneNight},
	{6, 3.5, ZonePeak},
	{7, 4.0, ZonePeak},
	{8, 4.5, ZonePeak},
	{9, 5.0, ZonePeak},
	{10, 5.0, ZonePeak},
	{11, 4.8, ZonePeak},
	{12, 4.5, ZonePeak},
	{13, 4.8, ZonePeak},
	{14, 5.0, ZonePeak},
	{15, 4.8, ZonePeak},
	{16, 4.5, ZonePeak},
	{17, 3.5, ZoneEvening},
	{18, 3.0, ZoneEvening},
	{19, 2.8, ZoneEvening},
	{20, 2.5, ZoneEvening},
	{21, 2.2, ZoneEvening},
	{22, 2.0, ZoneEvening},
	{23, 1.8, ZoneNight},
}

// RateAt returns the rate for an hour, wrapping past midnight.
func RateAt(hour int) float64 {
	return Tariffs[((hour%24)+24)%24].Rate
}
