package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsiderWatch/internal/model"
)

func summaries(types ...model.EventType) []model.EventSummary {
	var out []model.EventSummary
	for _, t := range types {
		out = append(out, model.EventSummary{Type: t, Count: 1, Dates: []model.Date{d0}})
	}
	return out
}

func TestSelectPrimary_Priority(t *testing.T) {
	tests := []struct {
		name  string
		in    []model.EventSummary
		want  model.EventType
		found bool
	}{
		{"empty", nil, "", false},
		{"plateau only", summaries(model.EventPlateau), "", false},
		{"holy grail beats everything", summaries(model.EventDisqualified, model.EventPlateau, model.EventHolyGrail, model.EventClamp), model.EventHolyGrail, true},
		{"slump recovery beats clamp", summaries(model.EventClamp, model.EventSlumpRecovery), model.EventSlumpRecovery, true},
		{"clamp beats restock", summaries(model.EventRestock, model.EventClamp), model.EventClamp, true},
		{"restock beats mid-rise", summaries(model.EventMidRise, model.EventRestock), model.EventRestock, true},
		{"mid-rise beats disqualified", summaries(model.EventDisqualified, model.EventMidRise), model.EventMidRise, true},
		{"disqualified over plateau", summaries(model.EventPlateau, model.EventDisqualified), model.EventDisqualified, true},
		{"zero count ignored", []model.EventSummary{{Type: model.EventHolyGrail}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectPrimary(tt.in)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrimaryEventFor(t *testing.T) {
	assert.Nil(t, PrimaryEventFor(summaries(model.EventPlateau)))

	p := PrimaryEventFor(summaries(model.EventPlateau, model.EventSlumpRecovery))
	require.NotNil(t, p)
	assert.Equal(t, model.EventSlumpRecovery, p.Type)
	assert.Equal(t, "Bottom Catch", p.Label)
	assert.NotEmpty(t, p.Icon)
	assert.NotEmpty(t, p.ColorClass)
	assert.NotEmpty(t, p.Tooltip)
}

func TestAggregate_FirstOccurrenceOrder(t *testing.T) {
	events := []model.ClassifiedEvent{
		{Type: model.EventDisqualified, Date: day(0)},
		{Type: model.EventHolyGrail, Date: day(10)},
		{Type: model.EventDisqualified, Date: day(20)},
		{Type: model.EventRestock, Date: day(0)},
	}
	got := Aggregate(events)

	require.Len(t, got, 3)
	assert.Equal(t, model.EventSummary{Type: model.EventDisqualified, Count: 2, Dates: []model.Date{day(0), day(20)}}, got[0])
	assert.Equal(t, model.EventHolyGrail, got[1].Type)
	assert.Equal(t, model.EventRestock, got[2].Type)
	assert.NotNil(t, Aggregate(nil))
}
