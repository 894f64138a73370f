package reasoner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// extractResponseText walks a response body along a dotted path such as
// "choices[0].message.content" and returns the string it lands on.
func extractResponseText(body []byte, path string) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decode reasoner response: %w", err)
	}

	current := doc
	for _, step := range parsePath(path) {
		if step.key != "" {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("response path %s: expected object at %q", path, step.key)
			}
			current, ok = obj[step.key]
			if !ok {
				return "", fmt.Errorf("response path %s: missing key %q", path, step.key)
			}
		}
		if step.indexed {
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("response path %s: expected array at %q", path, step.key)
			}
			if step.index < 0 || step.index >= len(arr) {
				return "", fmt.Errorf("response path %s: index %d out of range", path, step.index)
			}
			current = arr[step.index]
		}
	}

	text, ok := current.(string)
	if !ok {
		return "", fmt.Errorf("response path %s: value is not a string", path)
	}
	return text, nil
}

type pathStep struct {
	key     string
	indexed bool
	index   int
}

func parsePath(path string) []pathStep {
	var steps []pathStep
	for _, segment := range strings.Split(path, ".") {
		step := pathStep{key: segment}
		if open := strings.Index(segment, "["); open != -1 && strings.HasSuffix(segment, "]") {
			step.key = segment[:open]
			if idx, err := strconv.Atoi(segment[open+1 : len(segment)-1]); err == nil {
				step.indexed = true
				step.index = idx
			}
		}
		steps = append(steps, step)
	}
	return steps
}
