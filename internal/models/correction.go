package models

// Correction is one reviewable record of the post-submission correction
// sequence: the question as presented, what the user picked, and what was
// right. Sequence preserves the order the quiz was taken in so review paging
// matches navigation order. UserSelected is nil for unanswered questions.
type Correction struct {
	SessionID        string   `bson:"session_id" json:"sessionId"`
	Sequence         int      `bson:"sequence" json:"sequence"`
	SubjectID        string   `bson:"subject_id" json:"subjectId"`
	SubjectName      string   `bson:"subject_name" json:"subjectName"`
	Year             int      `bson:"year" json:"year"`
	Question         string   `bson:"question" json:"question"`
	QuestionImage    string   `bson:"question_image,omitempty" json:"questionImage,omitempty"`
	ExplanationImage string   `bson:"explanation_image,omitempty" json:"explanationImage,omitempty"`
	ImagePosition    string   `bson:"image_position" json:"imagePosition"`
	Options          []Option `bson:"options" json:"options"`
	CorrectOption    string   `bson:"correct_option" json:"correctOption"`
	UserSelected     *string  `bson:"user_selected,omitempty" json:"userSelected"`
	Explanation      string   `bson:"explanation" json:"explanation"`
}
