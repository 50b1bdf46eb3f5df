package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

const fence = "```"

// StripCodeFence removes a markdown code fence wrapped around an LLM response.
// The opening marker may carry a language tag ("```json").
func StripCodeFence(response string) string {
	s := strings.TrimSpace(response)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = strings.TrimPrefix(s, fence)
	// language tag ends at whitespace or at the opening of the JSON value
	s = strings.TrimLeftFunc(s, isTagRune)
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isTagRune(r rune) bool {
	return !unicode.IsSpace(r) && !strings.ContainsRune("{[\"", r)
}

var ErrNotObject = errors.New("top-level JSON value is not an object")

// DecodeObject strips a code fence and parses the remainder as a JSON object.
func DecodeObject(response string) (gjson.Result, error) {
	s := StripCodeFence(response)
	if s == "" {
		return gjson.Result{}, errors.New("empty response")
	}
	if !gjson.Valid(s) {
		return gjson.Result{}, errors.New("invalid JSON")
	}
	doc := gjson.Parse(s)
	if !doc.IsObject() {
		return gjson.Result{}, ErrNotObject
	}
	return doc, nil
}

// ParseJSON cleans and unmarshals a JSON string into a type T.
// Besides code fences it tolerates prose around the object by cutting the
// response down to the outermost braces.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr := StripCodeFence(response)

	start := strings.IndexByte(jsonStr, '{')
	end := strings.LastIndexByte(jsonStr, '}')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end > start {
		jsonStr = jsonStr[start : end+1]
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}
