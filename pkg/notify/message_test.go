package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDispatchMessageBasic(t *testing.T) {
	blocks := BuildDispatchMessage(DispatchInput{
		DispatchID:        "d1",
		SituationID:       "sit-1",
		SituationHeadline: "Shelter beds filling fast",
		Sensitivity:       "general",
		Body:              "Three shelters report near-capacity [signal:abc].",
		CitedSignalIDs:    []string{"abc"},
		DashboardURL:      "https://rootsignal.example.com",
	})

	require.GreaterOrEqual(t, len(blocks), 3)

	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":newspaper:")
	assert.Contains(t, header.Text.Text, "Shelter beds filling fast")

	body := blocks[1].(*goslack.SectionBlock)
	assert.Contains(t, body.Text.Text, "near-capacity")

	footer := blocks[2].(*goslack.ContextBlock)
	footerText := footer.ContextElements.Elements[0].(*goslack.TextBlockObject)
	assert.Contains(t, footerText.Text, "Cited signals: 1")

	action := blocks[3].(*goslack.ActionBlock)
	btn := action.Elements.ElementSet[0].(*goslack.ButtonBlockElement)
	assert.Contains(t, btn.URL, "https://rootsignal.example.com/situations/sit-1")
}

func TestBuildDispatchMessageSensitiveEmoji(t *testing.T) {
	blocks := BuildDispatchMessage(DispatchInput{Sensitivity: "sensitive", SituationHeadline: "x"})
	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":lock:")
}

func TestBuildDispatchMessageFlagsInvalidCitation(t *testing.T) {
	blocks := BuildDispatchMessage(DispatchInput{
		SituationHeadline: "x",
		InvalidCitation:   true,
		FlagReasons:       []string{"uncited claim"},
	})
	footer := blocks[2].(*goslack.ContextBlock)
	footerText := footer.ContextElements.Elements[0].(*goslack.TextBlockObject)
	assert.Contains(t, footerText.Text, "uncited claim detected")
	assert.Contains(t, footerText.Text, "uncited claim")
}

func TestBuildDispatchMessageNoButtonWithoutDashboardURL(t *testing.T) {
	blocks := BuildDispatchMessage(DispatchInput{SituationHeadline: "x"})
	require.Len(t, blocks, 3)
}

func TestTruncateForSlack(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", truncateForSlack("hello"))
	})

	t.Run("exact limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength)
		assert.Equal(t, text, truncateForSlack(text))
	})

	t.Run("over limit truncated", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength+100)
		result := truncateForSlack(text)
		assert.True(t, len(result) < len(text))
		assert.Contains(t, result, "truncated")
	})

	t.Run("multi-byte runes not split", func(t *testing.T) {
		text := strings.Repeat("🔥", maxBlockTextLength+10)
		result := truncateForSlack(text)
		assert.Contains(t, result, "truncated")
		assert.True(t, utf8.ValidString(result), "result should be valid UTF-8")
		prefix := strings.Split(result, "\n\n_...")[0]
		assert.Equal(t, maxBlockTextLength, utf8.RuneCountInString(prefix))
	})
}
