package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() AreaDirectory {
	return AreaDirectory{
		Centers: map[string]Center{
			"010300": {Code: "010300", Name: "関東甲信地方"},
			"010100": {Code: "010100", Name: "北海道地方"},
		},
		Offices: map[string]Office{
			"140000": {Code: "140000", Name: "神奈川県", Parent: "010300"},
			"130000": {Code: "130000", Name: "東京都", Parent: "010300"},
			"016000": {Code: "016000", Name: "石狩・空知・後志地方", Parent: "010100"},
		},
	}
}

func TestAreaDirectory_SortedCenters(t *testing.T) {
	centers := testDirectory().SortedCenters()
	require.Len(t, centers, 2)
	assert.Equal(t, "010100", centers[0].Code)
	assert.Equal(t, "010300", centers[1].Code)
}

func TestAreaDirectory_OfficesOf(t *testing.T) {
	d := testDirectory()

	offices := d.OfficesOf("010300")
	require.Len(t, offices, 2)
	assert.Equal(t, "130000", offices[0].Code)
	assert.Equal(t, "東京都", offices[0].Name)
	assert.Equal(t, "140000", offices[1].Code)

	assert.Empty(t, d.OfficesOf("999999"))
}

func TestAreaDirectory_FirstCenter(t *testing.T) {
	c, ok := testDirectory().FirstCenter()
	require.True(t, ok)
	assert.Equal(t, "北海道地方", c.Name)

	_, ok = AreaDirectory{}.FirstCenter()
	assert.False(t, ok)
}

func TestReportDate(t *testing.T) {
	assert.Equal(t, "2026-10-15", ReportDate("2026-10-15T17:00:00+09:00"))
	assert.Equal(t, "2026-10-15", ReportDate("2026-10-15"))
	assert.Empty(t, ReportDate(""))
}

func TestPairEntries(t *testing.T) {
	t.Run("equal lengths", func(t *testing.T) {
		entries := PairEntries("130000",
			[]string{"2026-10-15T17:00:00+09:00", "2026-10-16T00:00:00+09:00"},
			[]string{"くもり", "晴れ"},
		)
		require.Len(t, entries, 2)
		assert.Equal(t, ForecastEntry{AreaCode: "130000", ReportDate: "2026-10-15", Weather: "くもり"}, entries[0])
		assert.Equal(t, "2026-10-16", entries[1].ReportDate)
	})

	t.Run("zips to the shorter slice", func(t *testing.T) {
		entries := PairEntries("130000",
			[]string{"2026-10-15T17:00:00+09:00", "2026-10-16T00:00:00+09:00", "2026-10-17T00:00:00+09:00"},
			[]string{"雨"},
		)
		require.Len(t, entries, 1)
		assert.Equal(t, "雨", entries[0].Weather)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, PairEntries("130000", nil, nil))
	})
}

func TestRecordsFromEntries(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)
	records := RecordsFromEntries([]ForecastEntry{{AreaCode: "130000", ReportDate: "2026-10-15", Weather: "晴れ"}}, at)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].ID)
	assert.Equal(t, at, records[0].CreatedAt)
	assert.Equal(t, "晴れ", records[0].Weather)
}

func TestClassifyWeather(t *testing.T) {
	tests := []struct {
		text string
		want Condition
	}{
		{"晴れ", ConditionSunny},
		{"晴れ　時々　雨", ConditionSunny},
		{"雨　所により　雷", ConditionRain},
		{"雪　後　くもり", ConditionSnow},
		{"曇り", ConditionCloudy},
		{"くもり", ConditionOther},
		{"", ConditionOther},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWeather(tt.text))
		})
	}
}

func TestCondition_IconAndColor(t *testing.T) {
	assert.Equal(t, "☀", ConditionSunny.Icon())
	assert.Equal(t, "orange", ConditionSunny.Color())
	assert.Equal(t, "⛅", Condition("unknown").Icon())
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
}
