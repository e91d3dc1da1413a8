package classifier

import "InsiderWatch/internal/model"

// Aggregate groups events by type. Summaries are ordered by the first
// occurrence of each type; dates keep emission order.
func Aggregate(events []model.ClassifiedEvent) []model.EventSummary {
	if len(events) == 0 {
		return []model.EventSummary{}
	}
	pos := make(map[model.EventType]int)
	var out []model.EventSummary
	for _, e := range events {
		i, ok := pos[e.Type]
		if !ok {
			i = len(out)
			pos[e.Type] = i
			out = append(out, model.EventSummary{Type: e.Type})
		}
		out[i].Count++
		out[i].Dates = append(out[i].Dates, e.Date)
	}
	return out
}
