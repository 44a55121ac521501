package service_test

import (
	"encoding/json"
	"errors"
	"testing"

	"weave-server/internal/models"
	"weave-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentChoices() []models.Choice {
	return []models.Choice{
		{ID: "choice1", Text: "Take the left path"},
		{ID: "choice2", Text: "Take the right path"},
	}
}

func TestNormalizeChoice(t *testing.T) {
	t.Run("Index zero maps to A", func(t *testing.T) {
		idx := 0
		label, selected, err := service.NormalizeChoice(service.ChoiceInput{Index: &idx}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelA, label)
		assert.Equal(t, "Take the left path", selected)
	})

	t.Run("Any non-zero index maps to B", func(t *testing.T) {
		for _, i := range []int{1, 2, 7, -1} {
			idx := i
			label, _, err := service.NormalizeChoice(service.ChoiceInput{Index: &idx}, currentChoices(), false)
			assert.NoError(t, err)
			assert.Equal(t, service.LabelB, label, "index %d", i)
		}
	})

	t.Run("Out-of-range index still resolves with placeholder text", func(t *testing.T) {
		idx := 5
		label, selected, err := service.NormalizeChoice(service.ChoiceInput{Index: &idx}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelB, label)
		assert.Equal(t, "Continue", selected)
	})

	t.Run("Labels pass through unchanged", func(t *testing.T) {
		label, _, err := service.NormalizeChoice(service.ChoiceInput{Text: "A"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelA, label)

		label, _, err = service.NormalizeChoice(service.ChoiceInput{Text: "B"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelB, label)
	})

	t.Run("Text matching the first choice maps to A", func(t *testing.T) {
		label, selected, err := service.NormalizeChoice(service.ChoiceInput{Text: "Take the left path"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelA, label)
		assert.Equal(t, "Take the left path", selected)
	})

	t.Run("Text matching the second choice maps to B", func(t *testing.T) {
		label, _, err := service.NormalizeChoice(service.ChoiceInput{Text: "Take the right path"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelB, label)
	})

	t.Run("Structured id resolves position", func(t *testing.T) {
		label, _, err := service.NormalizeChoice(service.ChoiceInput{ID: "choice1", Text: "anything"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelA, label)
	})

	t.Run("Unmatched text maps to B by default", func(t *testing.T) {
		label, selected, err := service.NormalizeChoice(service.ChoiceInput{Text: "I climb the tower"}, currentChoices(), false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelB, label)
		assert.Equal(t, "I climb the tower", selected)
	})

	t.Run("Unmatched text is an error in strict mode", func(t *testing.T) {
		_, _, err := service.NormalizeChoice(service.ChoiceInput{Text: "I climb the tower"}, currentChoices(), true)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrUnknownChoice))
	})

	t.Run("Empty chapter choices still resolve loose text", func(t *testing.T) {
		label, _, err := service.NormalizeChoice(service.ChoiceInput{Text: "go north"}, nil, false)
		assert.NoError(t, err)
		assert.Equal(t, service.LabelB, label)
	})
}

func TestChoiceInputUnmarshalJSON(t *testing.T) {
	t.Run("Number becomes an index", func(t *testing.T) {
		var ci service.ChoiceInput
		require.NoError(t, json.Unmarshal([]byte(`0`), &ci))
		require.NotNil(t, ci.Index)
		assert.Equal(t, 0, *ci.Index)
		assert.False(t, ci.IsZero())
	})

	t.Run("String becomes text", func(t *testing.T) {
		var ci service.ChoiceInput
		require.NoError(t, json.Unmarshal([]byte(`"Take the left path"`), &ci))
		assert.Nil(t, ci.Index)
		assert.Equal(t, "Take the left path", ci.Text)
	})

	t.Run("Object becomes id and text", func(t *testing.T) {
		var ci service.ChoiceInput
		require.NoError(t, json.Unmarshal([]byte(`{"id":"choice2","text":"Take the right path"}`), &ci))
		assert.Equal(t, "choice2", ci.ID)
		assert.Equal(t, "Take the right path", ci.Text)
	})

	t.Run("Object without text is rejected", func(t *testing.T) {
		var ci service.ChoiceInput
		assert.Error(t, json.Unmarshal([]byte(`{"id":"choice2"}`), &ci))
	})

	t.Run("Zero value reports IsZero", func(t *testing.T) {
		var ci service.ChoiceInput
		assert.True(t, ci.IsZero())
	})
}
