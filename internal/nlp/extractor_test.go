package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susnata2002/ai-scheduling-bot/internal/availability"
)

func TestParseEntities(t *testing.T) {
	got, err := parseEntities(`{"entities":[{"kind":"DATE","text":"Monday"},{"kind":"TIME","text":"10 AM"},{"kind":"TIME","text":"12 PM"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []availability.Entity{
		{Kind: availability.KindDate, Text: "Monday"},
		{Kind: availability.KindTime, Text: "10 AM"},
		{Kind: availability.KindTime, Text: "12 PM"},
	}, got)
}

func TestParseEntities_MarkdownFenced(t *testing.T) {
	got, err := parseEntities("```json\n{\"entities\":[{\"kind\":\"DATE\",\"text\":\"tomorrow\"}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []availability.Entity{{Kind: availability.KindDate, Text: "tomorrow"}}, got)
}

func TestParseEntities_SkipsUnknownKindsAndBlanks(t *testing.T) {
	got, err := parseEntities(`{"entities":[{"kind":"PERSON","text":"Ada"},{"kind":"TIME","text":"  "},{"kind":"time","text":"3pm"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []availability.Entity{{Kind: availability.KindTime, Text: "3pm"}}, got)
}

func TestParseEntities_Empty(t *testing.T) {
	got, err := parseEntities(`{"entities":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseEntities_Garbage(t *testing.T) {
	_, err := parseEntities("sure! here are the entities you asked for")
	assert.Error(t, err)
}
