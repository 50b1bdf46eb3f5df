package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"inline fence", "```{\"a\": 1}```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```  \n", `{}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"tag without whitespace", "```json{\"a\":1}```", `{"a":1}`},
		{"tag before array", "```JSON[1,2]```", `[1,2]`},
		{"tag only", "```json", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestDecodeObject(t *testing.T) {
	doc, err := DecodeObject("```json\n{\"sender\": {\"name\": \"Ann\"}}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Ann", doc.Get("sender.name").String())

	doc, err = DecodeObject("```json{\"a\":1}```")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Get("a").Int())

	_, err = DecodeObject("Sure, here is the data: {")
	assert.Error(t, err)

	_, err = DecodeObject(`["not", "an", "object"]`)
	assert.True(t, errors.Is(err, ErrNotObject))

	_, err = DecodeObject("   ")
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	type summary struct {
		Summary string `json:"summary"`
	}

	got, err := ParseJSON[summary]("Here you go:\n{\"summary\": \"A memo.\"}\nThanks")
	require.NoError(t, err)
	assert.Equal(t, "A memo.", got.Summary)

	_, err = ParseJSON[summary]("no json here")
	assert.Error(t, err)
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	perr := &ProviderError{Provider: "vision", Op: "detect text", Err: cause}
	assert.ErrorIs(t, perr, cause)
	assert.Contains(t, perr.Error(), "vision detect text")

	parseErr := &ParseError{Pass: "primary", Raw: "nope", Err: cause}
	assert.ErrorIs(t, parseErr, cause)
	assert.Equal(t, "nope", parseErr.Raw)
}
