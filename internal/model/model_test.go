package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := NewDate(2024, time.March, 8)
	for _, s := range []string{"2024-03-08", "2024-03-08T23:59:59Z", "2024-03-08 09:30:00", "2024-03-08T01:00:00-05:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDate("03/08/2024")
	assert.Error(t, err)
	_, err = ParseDate("2024")
	assert.Error(t, err)
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 27)
	assert.Equal(t, NewDate(2024, time.March, 1), d.AddDays(3))
	assert.Equal(t, 3, d.AddDays(3).DaysSince(d))
	assert.Equal(t, -30, d.AddDays(-30).DaysSince(d))
	assert.True(t, NewDate(2024, time.March, 9).IsWeekend())
	assert.False(t, NewDate(2024, time.March, 8).IsWeekend())
}

func TestDate_JSON(t *testing.T) {
	var p PricePoint
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-03-08T15:30:00","close":12.5}`), &p))
	assert.Equal(t, NewDate(2024, time.March, 8), p.Date)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-08","close":12.5}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":20240308}`), &p))
}

func TestParseEventType_BothNamingSchemes(t *testing.T) {
	tests := map[string]EventType{
		"holy-grail":            EventHolyGrail,
		"breakout-accumulation": EventHolyGrail,
		"slump-recovery":        EventSlumpRecovery,
		"bottom-catch":          EventSlumpRecovery,
		"clamp":                 EventClamp,
		"cluster-pending":       EventClamp,
		"restock":               EventRestock,
		"slow-burn":             EventRestock,
		"mid-rise":              EventMidRise,
		"late-chase":            EventMidRise,
		"disqualified":          EventDisqualified,
		"failed-support":        EventDisqualified,
		"plateau":               EventPlateau,
		"Stabilizing":           EventPlateau,
	}
	for in, want := range tests {
		got, err := ParseEventType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEventType("moonshot")
	assert.Error(t, err)
}

func TestEventSummary_DecodesLegacyAndRenamedNames(t *testing.T) {
	var got []EventSummary
	raw := `[{"type":"breakout-accumulation","count":1,"dates":["2024-03-08"]},{"type":"plateau","count":2,"dates":["2024-03-01","2024-03-04"]}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &got))

	require.Len(t, got, 2)
	assert.Equal(t, EventHolyGrail, got[0].Type)
	assert.Equal(t, EventPlateau, got[1].Type)

	out, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"holy-grail","count":1,"dates":["2024-03-08"]}`, string(out))
}

func TestEventTypes_HaveDisplayMetadata(t *testing.T) {
	seen := map[string]bool{}
	for _, et := range EventTypes {
		require.True(t, et.Valid(), et)
		d := et.Display()
		assert.NotEmpty(t, d.Label, et)
		assert.NotEmpty(t, d.Icon, et)
		assert.False(t, seen[d.Name], "duplicate display name %s", d.Name)
		seen[d.Name] = true
	}
	assert.False(t, EventType("nope").Valid())
}

func TestNormalizeTicker(t *testing.T) {
	for in, want := range map[string]string{"aapl": "AAPL", " brk.b ": "BRK.B", "BF-B": "BF-B", "7203": "7203"} {
		got, err := NormalizeTicker(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "-X", ".A", "AAPL MSFT", "--ticker", "ABCDEFGHIJK", "A/B", "$(id)"} {
		_, err := NormalizeTicker(in)
		assert.Error(t, err, in)
	}
}
