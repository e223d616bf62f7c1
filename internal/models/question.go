package models

import "strings"

// Option is one answer choice of a multiple-choice question. IsCorrect is the
// authoritative flag some backend records carry; when it is absent the
// positional key on the question decides correctness.
type Option struct {
	Text      string `bson:"text" json:"text"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
	IsCorrect bool   `bson:"is_correct" json:"isCorrect"`
}

// Question is the canonical question shape every downstream component works
// with. Raw records from the question API or the offline cache are resolved
// into this shape once, by the normalize package.
type Question struct {
	ID               string   `bson:"_id,omitempty" json:"id"`
	Text             string   `bson:"text" json:"text"`
	Options          []Option `bson:"options" json:"options"`
	CorrectOption    string   `bson:"correct_option" json:"correctOption"`
	Explanation      string   `bson:"explanation" json:"explanation"`
	QuestionImage    string   `bson:"question_image,omitempty" json:"questionImage,omitempty"`
	ExplanationImage string   `bson:"explanation_image,omitempty" json:"explanationImage,omitempty"`
	ImagePosition    string   `bson:"image_position" json:"imagePosition"`
}

// OptionKey returns the positional letter for option index i: 0 is "a",
// 1 is "b", and so on. Indexes past "z" have no key.
func OptionKey(i int) string {
	if i < 0 || i > 25 {
		return ""
	}
	return string(rune('a' + i))
}

// IsOptionCorrect applies the two-source correctness rule: the option's own
// flag, or a positional match against CorrectOption. Either source marks the
// option correct. A question carrying neither has no correct option at all
// and scores as wrong whatever the user picked.
func (q *Question) IsOptionCorrect(i int) bool {
	if i < 0 || i >= len(q.Options) {
		return false
	}
	if q.Options[i].IsCorrect {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(q.CorrectOption))
	return key != "" && OptionKey(i) == key
}
