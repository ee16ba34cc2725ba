package model

import "strings"

// IngredientKind distinguishes section headers from actual ingredients
// within the ordered ingredient sequence.
type IngredientKind string

const (
	IngredientHeader IngredientKind = "header"
	IngredientItem   IngredientKind = "item"
)

// IngredientLine is one element of a recipe's ingredient sequence. Headers
// carry the name of an ingredient group ("For the sauce"); items carry a
// single ingredient text. Keeping both in one ordered sequence preserves
// grouping without a nested structure.
type IngredientLine struct {
	Kind IngredientKind `json:"kind"`
	Text string         `json:"text"`
}

// groupHeaderMarker wraps header lines in the stored string form. Consumers
// of the stored rows strip it before display.
const groupHeaderMarker = "**"

// FlattenIngredients converts tagged ingredient lines to the stored string
// form, wrapping headers in the group-header marker.
func FlattenIngredients(lines []IngredientLine) JSONBStringArray {
	out := make(JSONBStringArray, 0, len(lines))
	for _, l := range lines {
		if l.Kind == IngredientHeader {
			out = append(out, groupHeaderMarker+l.Text+groupHeaderMarker)
			continue
		}
		out = append(out, l.Text)
	}
	return out
}

// ParseIngredientLines converts stored ingredient strings back to tagged
// lines, recognizing the group-header marker.
func ParseIngredientLines(stored []string) []IngredientLine {
	out := make([]IngredientLine, 0, len(stored))
	for _, s := range stored {
		if len(s) > 2*len(groupHeaderMarker) &&
			strings.HasPrefix(s, groupHeaderMarker) && strings.HasSuffix(s, groupHeaderMarker) {
			out = append(out, IngredientLine{
				Kind: IngredientHeader,
				Text: strings.TrimSuffix(strings.TrimPrefix(s, groupHeaderMarker), groupHeaderMarker),
			})
			continue
		}
		out = append(out, IngredientLine{Kind: IngredientItem, Text: s})
	}
	return out
}
