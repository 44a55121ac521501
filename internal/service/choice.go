package service

import (
	"encoding/json"
	"fmt"

	"weave-server/internal/models"
)

// Positional labels of the external continuation protocol. Exactly two
// choices exist per chapter: index 0 is "A", everything else is "B".
const (
	LabelA = "A"
	LabelB = "B"
)

// ChoiceInput is the tagged union of the accepted choice representations:
// a zero-based index, a positional label, a free-text choice, or the
// client's structured {id, text} object.
type ChoiceInput struct {
	Index *int
	Text  string
	ID    string
}

// UnmarshalJSON accepts a JSON number, a JSON string ("A"/"B" or free text)
// or an {id, text} object.
func (ci *ChoiceInput) UnmarshalJSON(data []byte) error {
	var index int
	if err := json.Unmarshal(data, &index); err == nil {
		ci.Index = &index
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		ci.Text = text
		return nil
	}

	var obj struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Text != "" {
		ci.ID = obj.ID
		ci.Text = obj.Text
		return nil
	}

	return fmt.Errorf("choice must be an index, a label, a text or an {id, text} object")
}

// IsZero reports whether no choice was provided at all.
func (ci ChoiceInput) IsZero() bool {
	return ci.Index == nil && ci.Text == "" && ci.ID == ""
}

// NormalizeChoice maps any choice representation to the canonical positional
// label, using the chapter about to be superseded as the lookup context.
// It also returns the display text of the selected choice for use in prompts
// and local fallback content.
//
// A free-text choice that matches none of the chapter's choices maps to "B"
// unless strict is set, in which case it is ErrUnknownChoice.
func NormalizeChoice(input ChoiceInput, current []models.Choice, strict bool) (label, selected string, err error) {
	if input.Index != nil {
		i := *input.Index
		label = LabelB
		if i == 0 {
			label = LabelA
		}
		if i >= 0 && i < len(current) {
			selected = current[i].Text
		} else {
			selected = "Continue"
		}
		return label, selected, nil
	}

	if input.Text == LabelA || input.Text == LabelB {
		return input.Text, input.Text, nil
	}

	idx := -1
	for i, choice := range current {
		if choice.Text == input.Text || (input.ID != "" && choice.ID == input.ID) {
			idx = i
			break
		}
	}

	switch {
	case idx == 0:
		label = LabelA
	case idx > 0:
		label = LabelB
	default:
		if strict {
			return "", "", fmt.Errorf("%w: %q", models.ErrUnknownChoice, input.Text)
		}
		label = LabelB
	}
	return label, input.Text, nil
}
