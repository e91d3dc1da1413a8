package classifier

import "InsiderWatch/internal/model"

// Priority orders event types for primary selection, highest first.
// EventPlateau is deliberately absent: it is never a primary event.
var Priority = []model.EventType{
	model.EventHolyGrail,
	model.EventSlumpRecovery,
	model.EventClamp,
	model.EventRestock,
	model.EventMidRise,
	model.EventDisqualified,
}

// SelectPrimary returns the highest-priority type present in summaries.
// ok is false when summaries is empty or only holds plateau events.
func SelectPrimary(summaries []model.EventSummary) (model.EventType, bool) {
	present := make(map[model.EventType]bool, len(summaries))
	for _, s := range summaries {
		if s.Count > 0 {
			present[s.Type] = true
		}
	}
	for _, t := range Priority {
		if present[t] {
			return t, true
		}
	}
	return "", false
}

// PrimaryEventFor returns the primary event with display metadata, or nil.
func PrimaryEventFor(summaries []model.EventSummary) *model.PrimaryEvent {
	t, ok := SelectPrimary(summaries)
	if !ok {
		return nil
	}
	d := t.Display()
	return &model.PrimaryEvent{
		Type:       t,
		Label:      d.Label,
		Icon:       d.Icon,
		ColorClass: d.ColorClass,
		Tooltip:    d.Tooltip,
	}
}
