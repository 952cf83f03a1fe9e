package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestAnswerUnmarshal(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`2`), &a))
	require.NotNil(t, a.Index)
	assert.Equal(t, 2, *a.Index)
	assert.Nil(t, a.Bool)

	var b Answer
	require.NoError(t, json.Unmarshal([]byte(`true`), &b))
	require.NotNil(t, b.Bool)
	assert.True(t, *b.Bool)
	assert.Nil(t, b.Index)

	var c Answer
	assert.Error(t, json.Unmarshal([]byte(`"oui"`), &c))
}

func TestAnswerMapRoundTrip(t *testing.T) {
	answers := map[uint]Answer{
		1: {Index: intPtr(3)},
		2: {Bool: boolPtr(false)},
	}

	data, err := json.Marshal(answers)
	require.NoError(t, err)

	var decoded map[uint]Answer
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded[1].Index)
	assert.Equal(t, 3, *decoded[1].Index)
	require.NotNil(t, decoded[2].Bool)
	assert.False(t, *decoded[2].Bool)
}

func TestAnswerMatches(t *testing.T) {
	mc := &Question{Type: MultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectIndex: intPtr(2)}
	tf := &Question{Type: TrueFalse, CorrectBool: boolPtr(true)}

	assert.True(t, Answer{Index: intPtr(2)}.Matches(mc))
	assert.False(t, Answer{Index: intPtr(1)}.Matches(mc))
	assert.False(t, Answer{}.Matches(mc))
	// 答案类型与题型不符
	assert.False(t, Answer{Bool: boolPtr(true)}.Matches(mc))

	assert.True(t, Answer{Bool: boolPtr(true)}.Matches(tf))
	assert.False(t, Answer{Bool: boolPtr(false)}.Matches(tf))
	assert.False(t, Answer{Index: intPtr(0)}.Matches(tf))
}

func TestQuestionValidate(t *testing.T) {
	valid := Question{ID: 1, Type: MultipleChoice, Text: "?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: intPtr(0)}
	assert.NoError(t, valid.Validate())

	tooFew := Question{ID: 2, Type: MultipleChoice, Text: "?", Options: []string{"a", "b"}, CorrectIndex: intPtr(0)}
	assert.Error(t, tooFew.Validate())

	outOfRange := Question{ID: 3, Type: MultipleChoice, Text: "?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: intPtr(4)}
	assert.Error(t, outOfRange.Validate())

	noBool := Question{ID: 4, Type: TrueFalse, Text: "?"}
	assert.Error(t, noBool.Validate())

	unknown := Question{ID: 5, Type: "essay", Text: "?"}
	assert.Error(t, unknown.Validate())
}
