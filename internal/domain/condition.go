package domain

import "strings"

// Condition is a coarse weather category used to pick an icon.
type Condition string

const (
	ConditionSunny  Condition = "sunny"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionCloudy Condition = "cloudy"
	ConditionOther  Condition = "other"
)

// ClassifyWeather maps JMA weather text to a Condition. The first matching
// kanji wins in the order 晴, 雨, 雪, 曇, so "晴れ 時々 雨" is sunny.
func ClassifyWeather(text string) Condition {
	switch {
	case strings.Contains(text, "晴"):
		return ConditionSunny
	case strings.Contains(text, "雨"):
		return ConditionRain
	case strings.Contains(text, "雪"):
		return ConditionSnow
	case strings.Contains(text, "曇"):
		return ConditionCloudy
	default:
		return ConditionOther
	}
}

// Icon returns a display glyph for the condition.
func (c Condition) Icon() string {
	switch c {
	case ConditionSunny:
		return "☀"
	case ConditionRain:
		return "☂"
	case ConditionSnow:
		return "❄"
	case ConditionCloudy:
		return "☁"
	default:
		return "⛅"
	}
}

// Color returns the CSS colour the UI uses for the condition.
func (c Condition) Color() string {
	switch c {
	case ConditionSunny:
		return "orange"
	case ConditionRain:
		return "#1e88e5"
	case ConditionSnow:
		return "#00bcd4"
	case ConditionCloudy:
		return "grey"
	default:
		return "#607d8b"
	}
}
