package engine

import (
	"math"
	"time"

	"exam-engine/internal/models"
)

// Score computes the result for a session. Correctness follows the
// two-source rule on each question; each subject is normalized to 0-100 via
// round(correct/total*100), and the session total is the sum of those
// per-subject scores, JAMB style: a subject with two questions carries the
// same maximum weight as one with sixty.
func Score(s *models.QuizSession) *models.QuizResult {
	result := &models.QuizResult{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Mode:        s.Mode,
		Offline:     s.Offline,
		CompletedAt: time.Now().UTC(),
	}

	for _, sub := range s.Subjects {
		correct := 0
		for i := range sub.Questions {
			idx, answered := sub.Answers[i]
			if answered && sub.Questions[i].IsOptionCorrect(idx) {
				correct++
			}
		}

		score := 0
		if len(sub.Questions) > 0 {
			score = int(math.Round(float64(correct) / float64(len(sub.Questions)) * 100))
		}

		result.SubjectScores = append(result.SubjectScores, models.SubjectScore{
			SubjectID: sub.SubjectID,
			Name:      sub.Name,
			Year:      sub.Year,
			Questions: len(sub.Questions),
			Correct:   correct,
			Wrong:     len(sub.Questions) - correct,
			Score:     score,
		})
		result.TotalScore += score
		result.TotalQuestions += len(sub.Questions)
		result.TotalCorrect += correct
	}

	result.MaxScore = len(s.Subjects) * 100
	result.TotalWrong = result.TotalQuestions - result.TotalCorrect
	return result
}

// SubmissionPayload builds the maps the submission endpoint wants: selected
// option text keyed by question id, and seconds spent keyed by subject id.
// Unanswered questions are left out of the answer map.
func SubmissionPayload(s *models.QuizSession) (map[string]string, map[string]int) {
	answers := make(map[string]string)
	timeSpent := make(map[string]int)
	for _, sub := range s.Subjects {
		timeSpent[sub.SubjectID] = sub.ElapsedSeconds
		for i, q := range sub.Questions {
			idx, ok := sub.Answers[i]
			if !ok || idx < 0 || idx >= len(q.Options) || q.ID == "" {
				continue
			}
			answers[q.ID] = q.Options[idx].Text
		}
	}
	return answers, timeSpent
}
