package weave

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/pkg/pii"
)

func TestVerifyDispatchAcceptsResolvedCitations(t *testing.T) {
	known := map[string]bool{"s1": true}
	invalid, reasons := verifyDispatch(
		"Volunteers restocked the fridge this week [signal:s1].",
		[]string{"s1"},
		known,
		pii.NewService(),
	)
	assert.False(t, invalid)
	assert.Empty(t, reasons)
}

func TestVerifyDispatchFlagsUnresolvedCitation(t *testing.T) {
	known := map[string]bool{"s1": true}
	invalid, reasons := verifyDispatch(
		"Volunteers restocked the fridge this week [signal:s2].",
		[]string{"s2"},
		known,
		pii.NewService(),
	)
	assert.True(t, invalid)
	assert.NotEmpty(t, reasons)
}

func TestVerifyDispatchFlagsPII(t *testing.T) {
	known := map[string]bool{"s1": true}
	invalid, reasons := verifyDispatch(
		"Reach the organizer at volunteer@example.com [signal:s1].",
		[]string{"s1"},
		known,
		pii.NewService(),
	)
	assert.False(t, invalid)
	assert.NotEmpty(t, reasons)
}

func TestVerifyDispatchFlagsUncitedFactualClaim(t *testing.T) {
	known := map[string]bool{"s1": true}
	invalid, reasons := verifyDispatch(
		"Around 300 people attended the rally downtown Saturday. More context [signal:s1].",
		[]string{"s1"},
		known,
		pii.NewService(),
	)
	assert.False(t, invalid)
	assert.NotEmpty(t, reasons)
}

func TestVerifyDispatchCleanBodyNoReasons(t *testing.T) {
	known := map[string]bool{"s1": true}
	invalid, reasons := verifyDispatch(
		"People gathered downtown this week [signal:s1].",
		[]string{"s1"},
		known,
		pii.NewService(),
	)
	assert.False(t, invalid)
	assert.Empty(t, reasons)
}
