// Package entitlement decides whether a user may keep moving forward
// through a quiz under the free tier.
package entitlement

// FreeQuestionLimit is how many questions a free user may see in one quiz,
// counted across all subjects in the session rather than per subject. The
// cap has to span subjects because subject switching is automatic and
// invisible to the user.
const FreeQuestionLimit = 5

// CanAdvance reports whether forward navigation is allowed. questionsSeen is
// the cumulative count across subjects including the current question.
// Premium users are never limited. The gate only applies to forward moves;
// backward navigation and re-answering never consult it.
func CanAdvance(questionsSeen int, premium bool) bool {
	if premium {
		return true
	}
	return questionsSeen < FreeQuestionLimit
}
