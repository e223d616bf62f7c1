package models

import "time"

// SubjectScore is one subject's scored outcome. Score is normalized to
// 0-100 regardless of how many questions the subject held.
type SubjectScore struct {
	SubjectID string `bson:"subject_id" json:"subjectId"`
	Name      string `bson:"name" json:"name"`
	Year      int    `bson:"year" json:"year"`
	Questions int    `bson:"questions" json:"questions"`
	Correct   int    `bson:"correct" json:"correct"`
	Wrong     int    `bson:"wrong" json:"wrong"`
	Score     int    `bson:"score" json:"score"`
}

// QuizResult is the scored outcome of a completed session. TotalScore is the
// sum of the per-subject normalized scores (JAMB style), so MaxScore is
// always 100 times the subject count.
type QuizResult struct {
	SessionID      string         `bson:"session_id" json:"sessionId"`
	UserID         string         `bson:"user_id" json:"userId"`
	Mode           Mode           `bson:"mode" json:"mode"`
	Offline        bool           `bson:"offline" json:"offline"`
	SubjectScores  []SubjectScore `bson:"subject_scores" json:"subjectScores"`
	TotalScore     int            `bson:"total_score" json:"totalScore"`
	MaxScore       int            `bson:"max_score" json:"maxScore"`
	TotalQuestions int            `bson:"total_questions" json:"totalQuestions"`
	TotalCorrect   int            `bson:"total_correct" json:"totalCorrect"`
	TotalWrong     int            `bson:"total_wrong" json:"totalWrong"`
	CompletedAt    time.Time      `bson:"completed_at" json:"completedAt"`
}
