package models

import "encoding/json"

// RawQuestion is a question record exactly as the question API or the offline
// cache delivers it. Options, images and the explanation image arrive in
// several shapes depending on backend version (JSON-encoded strings, arrays,
// bare objects); they stay opaque here and are resolved by the normalize
// package.
type RawQuestion struct {
	ID               string          `json:"id,omitempty" bson:"id,omitempty"`
	LegacyID         string          `json:"_id,omitempty" bson:"_id,omitempty"`
	Question         string          `json:"question" bson:"question"`
	CorrectOption    string          `json:"correctOption,omitempty" bson:"correctOption,omitempty"`
	Explanation      string          `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Options          json.RawMessage `json:"options,omitempty" bson:"options,omitempty"`
	Images           json.RawMessage `json:"images,omitempty" bson:"images,omitempty"`
	ExplanationImage json.RawMessage `json:"explanationImage,omitempty" bson:"explanationImage,omitempty"`
	ImagePosition    string          `json:"imagePosition,omitempty" bson:"imagePosition,omitempty"`
}

// QuestionID prefers the modern id field over the legacy Mongo one.
func (r *RawQuestion) QuestionID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.LegacyID
}

// Subject is an entry of the subject catalog served by the question API.
type Subject struct {
	ID       string `json:"id,omitempty"`
	LegacyID string `json:"_id,omitempty"`
	Name     string `json:"name"`
}

// SubjectID prefers the modern id field over the legacy Mongo one.
func (s *Subject) SubjectID() string {
	if s.ID != "" {
		return s.ID
	}
	return s.LegacyID
}
