// Package normalize turns the question API's heterogeneous raw records into
// canonical Question values. The backend has shipped options and images in
// several shapes over the years (JSON-encoded strings, arrays of strings,
// arrays of objects, bare objects); everything is resolved here, once, so no
// downstream code ever re-inspects raw shapes. Malformed JSON in any field
// degrades to an empty value instead of failing the question.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"exam-engine/internal/models"
)

const defaultImagePosition = "top"

// Normalizer resolves raw question records against a fixed API host root
// used for relative image paths.
type Normalizer struct {
	apiRoot string
}

// New creates a Normalizer. apiRoot is the question API host root, without
// the /api path segment, e.g. "https://api.example.com".
func New(apiRoot string) *Normalizer {
	return &Normalizer{apiRoot: strings.TrimRight(apiRoot, "/")}
}

// Question resolves one raw record into the canonical shape.
func (n *Normalizer) Question(raw models.RawQuestion) models.Question {
	image, position := n.questionImage(raw.Images, raw.ImagePosition)

	explanation := raw.Explanation
	if explanation == "" {
		explanation = "No explanation provided."
	}

	return models.Question{
		ID:               raw.QuestionID(),
		Text:             raw.Question,
		Options:          n.options(raw.Options),
		CorrectOption:    strings.ToLower(strings.TrimSpace(raw.CorrectOption)),
		Explanation:      explanation,
		QuestionImage:    image,
		ExplanationImage: n.explanationImage(raw.ExplanationImage),
		ImagePosition:    position,
	}
}

// Questions resolves a batch in order.
func (n *Normalizer) Questions(raw []models.RawQuestion) []models.Question {
	out := make([]models.Question, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.Question(r))
	}
	return out
}

// options accepts a JSON-encoded string, an array of strings, or an array of
// objects with {text|value, image, isCorrect|correct|answer}. Non-object
// entries become plain text options. Unparseable input yields no options.
func (n *Normalizer) options(raw json.RawMessage) []models.Option {
	if len(raw) == 0 {
		return nil
	}

	var entries []any
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &entries); err != nil {
			return []models.Option{}
		}
	} else if err := json.Unmarshal(raw, &entries); err != nil {
		return []models.Option{}
	}

	opts := make([]models.Option, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			opts = append(opts, models.Option{Text: stringify(entry)})
			continue
		}
		text := stringField(obj, "text")
		if text == "" {
			text = stringField(obj, "value")
		}
		opts = append(opts, models.Option{
			Text:      text,
			Image:     n.ResolveImageURL(stringField(obj, "image")),
			IsCorrect: truthy(obj["isCorrect"]) || truthy(obj["correct"]) || truthy(obj["answer"]),
		})
	}
	return opts
}

// questionImage accepts a JSON array, a single JSON object, a bare string,
// or nothing. It picks the first array element that is either a non-trivial
// string or an object carrying a url. The position override comes from the
// array's first element when that element is an object, whether or not it is
// the element selected.
func (n *Normalizer) questionImage(raw json.RawMessage, rawPosition string) (string, string) {
	position := rawPosition
	if position == "" {
		position = defaultImagePosition
	}
	if len(raw) == 0 {
		return "", position
	}

	var entries []any
	var single map[string]any

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		cleaned := strings.TrimSpace(encoded)
		if strings.HasPrefix(cleaned, "[") || strings.HasPrefix(cleaned, "{") {
			if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
				if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
					return "", position
				}
			}
		} else {
			entries = []any{cleaned}
		}
	} else if err := json.Unmarshal(raw, &entries); err != nil {
		if err := json.Unmarshal(raw, &single); err != nil {
			return "", position
		}
	}

	// Bare object input is used directly and never overrides the position.
	if single != nil {
		return n.ResolveImageURL(stringField(single, "url")), position
	}

	if len(entries) > 0 {
		if first, ok := entries[0].(map[string]any); ok {
			if p := stringField(first, "position"); p != "" {
				position = p
			}
		}
	}

	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			s := strings.TrimSpace(v)
			if len(s) > 5 && s != "[" && s != "]" && !strings.Contains(s, "undefined") {
				return n.ResolveImageURL(s), position
			}
		case map[string]any:
			if url := stringField(v, "url"); url != "" {
				return n.ResolveImageURL(url), position
			}
		}
	}
	return "", position
}

// explanationImage accepts a bare URL string, a JSON-encoded object, or a
// JSON object carrying url.
func (n *Normalizer) explanationImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		cleaned := strings.TrimSpace(encoded)
		if strings.HasPrefix(cleaned, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
				return ""
			}
			return n.ResolveImageURL(stringField(obj, "url"))
		}
		return n.ResolveImageURL(encoded)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return n.ResolveImageURL(stringField(obj, "url"))
}

// ResolveImageURL turns the backend's mix of absolute URLs, root-relative
// paths and bare references into absolute URLs. This is the single place
// image URLs are fixed up; question, option and explanation images all come
// through here.
func (n *Normalizer) ResolveImageURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "/") {
		return n.apiRoot + url
	}
	if strings.HasPrefix(url, "http") {
		return url
	}
	// A bare value that looks like a domain gets a scheme; anything else is
	// treated as relative to the API host root.
	if strings.Contains(url, "cloudinary") || strings.Contains(url, "www") {
		return "https://" + url
	}
	return n.apiRoot + "/" + url
}

// truthy matches the loose correctness flags seen in the wild: true, "true",
// 1 and "1" all count.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t == 1
	}
	return false
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
