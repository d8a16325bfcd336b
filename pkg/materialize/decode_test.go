package materialize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("https://example.com/path?q=1"))
	assert.Equal(t, "", domainOf("not a url"))
	assert.Equal(t, "", domainOf(""))
}

func TestDistinctStrings(t *testing.T) {
	assert.Equal(t, 2, distinctStrings([]string{"a", "b", "a", "", "b"}))
}

func TestAsTimeParsesRFC3339(t *testing.T) {
	ts, ok := asTime("2026-01-15T10:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, time.January, ts.Month())
}

func TestAsTimeRejectsGarbage(t *testing.T) {
	_, ok := asTime("not a time")
	assert.False(t, ok)
	_, ok = asTime(nil)
	assert.False(t, ok)
}

func TestAsFloatVariants(t *testing.T) {
	f, ok := asFloat(float32(2.5))
	assert.True(t, ok)
	assert.InDelta(t, 2.5, f, 0.0001)

	_, ok = asFloat("nope")
	assert.False(t, ok)
}
