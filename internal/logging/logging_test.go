package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "")

	log.Info().Msg("hidden")
	log.Warn().Str("kind", "budgets").Msg("save failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"kind":"budgets"`)
}

func TestNew_HumanFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "human")
	log.Info().Msg("hello")

	assert.NotContains(t, buf.String(), `"message"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud", "json")
	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
