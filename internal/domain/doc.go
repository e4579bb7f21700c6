// Package domain models Japan Meteorological Agency (JMA) forecast data.
//
// # Data Source
//
// JMA publishes its forecast products as static JSON under
// https://www.jma.go.jp/bosai/. Two documents are used:
//
//	common/const/area.json              area directory (centers, offices, ...)
//	forecast/data/forecast/{code}.json  forecast for one office code
//
// # Area Codes
//
// The directory is a hierarchy. Regional centers ("centers", e.g. 010300
// 関東甲信地方) group forecast offices ("offices", e.g. 130000 東京都). Every
// office names its center in "parent". Codes are six-digit strings and are
// presented in ascending order.
//
// # Time Series
//
// A forecast document is an array of reports. The first report's first
// timeSeries holds parallel arrays:
//
//	timeDefines:        ["2026-10-15T17:00:00+09:00", ...]
//	areas[0].weathers:  ["くもり　時々　晴れ", ...]
//
// Entries are formed by pairing the arrays index by index; surplus elements
// of the longer array are dropped. The report date is the part of the
// timeDefine before "T".
//
// # Persistence
//
// Forecast records are keyed by (area code, report date). A later fetch for
// the same key replaces the weather text and created-at stamp but keeps the
// record id. Records are never deleted by the application.
package domain
