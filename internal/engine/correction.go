package engine

import "exam-engine/internal/models"

// Corrections builds the post-submission review sequence: one record per
// question, subject by subject, in the order the quiz presented them, so
// review paging matches the order the quiz was taken in.
func Corrections(s *models.QuizSession) []models.Correction {
	var out []models.Correction
	seq := 0
	for _, sub := range s.Subjects {
		for i, q := range sub.Questions {
			var selected *string
			if idx, ok := sub.Answers[i]; ok && idx >= 0 && idx < len(q.Options) {
				text := q.Options[idx].Text
				selected = &text
			}
			out = append(out, models.Correction{
				SessionID:        s.ID,
				Sequence:         seq,
				SubjectID:        sub.SubjectID,
				SubjectName:      sub.Name,
				Year:             sub.Year,
				Question:         q.Text,
				QuestionImage:    q.QuestionImage,
				ExplanationImage: q.ExplanationImage,
				ImagePosition:    q.ImagePosition,
				Options:          q.Options,
				CorrectOption:    q.CorrectOption,
				UserSelected:     selected,
				Explanation:      q.Explanation,
			})
			seq++
		}
	}
	return out
}
