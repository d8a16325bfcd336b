package notify

import (
	"fmt"
	"strings"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

var sensitivityEmoji = map[string]string{
	"general":   ":newspaper:",
	"elevated":  ":warning:",
	"sensitive": ":lock:",
}

// dispatchFingerprint is embedded (invisibly, in a context block) in every
// dispatch message so a retried NotifyDispatch call can find the
// already-posted message instead of reposting it.
func dispatchFingerprint(dispatchID string) string {
	return fmt.Sprintf("dispatch:%s", dispatchID)
}

// BuildDispatchMessage creates Block Kit blocks for a freshly created
// dispatch (EventDispatchCreated): the situation headline, the dispatch
// body, and a citation count so an editor can see at a glance how
// well-sourced the claim is before it goes out.
func BuildDispatchMessage(input DispatchInput) []goslack.Block {
	emoji := sensitivityEmoji[input.Sensitivity]
	if emoji == "" {
		emoji = ":newspaper:"
	}

	headerText := fmt.Sprintf("%s *%s*", emoji, input.SituationHeadline)
	var blocks []goslack.Block
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
		nil, nil,
	))
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, truncateForSlack(input.Body), false, false),
		nil, nil,
	))

	footer := fmt.Sprintf("Cited signals: %d", len(input.CitedSignalIDs))
	if input.InvalidCitation {
		footer += "  :triangular_flag_on_post: uncited claim detected"
	}
	if len(input.FlagReasons) > 0 {
		footer += "  " + strings.Join(input.FlagReasons, ", ")
	}
	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType, footer, false, false),
		goslack.NewTextBlockObject(goslack.PlainTextType, dispatchFingerprint(input.DispatchID), false, false),
	))

	if input.DashboardURL != "" {
		url := fmt.Sprintf("%s/situations/%s", input.DashboardURL, input.SituationID)
		btn := goslack.NewButtonBlockElement("", "", goslack.NewTextBlockObject(goslack.PlainTextType, "View Situation", false, false))
		btn.URL = url
		blocks = append(blocks, goslack.NewActionBlock("", btn))
	}

	return blocks
}

func truncateForSlack(text string) string {
	runes := []rune(text)
	if len(runes) <= maxBlockTextLength {
		return text
	}
	return string(runes[:maxBlockTextLength]) + "\n\n_... (truncated — view full dispatch in dashboard)_"
}
