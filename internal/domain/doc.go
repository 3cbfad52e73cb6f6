// Package domain models daily weather observations scored for next-day rain.
//
// # Data Source
//
// Observations follow the Australian Bureau of Meteorology daily summary layout
// used by the "Rain in Australia" (weatherAUS) dataset: one row per station and
// day, with morning (9am) and afternoon (3pm) readings. Operators supply rows as a
// CSV export or type a single row by hand.
//
// # Column Conventions
//
// Continuous measurements (standardized before scoring):
//
//	MinTemp, MaxTemp, Temp9am, Temp3pm        °C
//	Rainfall, Evaporation                     mm
//	Sunshine                                  hours
//	WindGustSpeed, WindSpeed9am, WindSpeed3pm km/h
//	Humidity9am, Humidity3pm                  percent
//	Pressure9am, Pressure3pm                  hPa
//	Cloud9am, Cloud3pm                        oktas (0–8)
//
// Compass directions:
//
//	WindGustDir, WindDir9am, WindDir3pm hold one of the 16 compass points
//	N, NNE, NE, ENE, E, ESE, SE, SSE, S, SSW, SW, WSW, W, WNW, NW, NNW.
//	They are collapsed into four cardinal buckets before encoding, see
//	[DirectionNormalizer].
//
// Rain indicator:
//
//	RainToday is "Yes" when more than 1mm fell in the 24 hours to 9am.
//
// Unknown values:
//
//	Empty cells and the markers NA, NaN, N/A and null are treated as missing.
//	Observations travel as gota dataframes: numeric columns are float series
//	holding NaN for missing entries, categorical columns are string series
//	whose missing entries are gota NaN elements. [Texts] reads either kind
//	back with missing entries as the empty string.
//
// # Failures
//
// Every error that leaves the pipeline carries a [Failure] kind so the command
// line layer can present it without inspecting messages. Schema differences
// between the input and the trained model are never failures.
package domain
