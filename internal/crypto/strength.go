package crypto

import "unicode"

// ScoreStrength evaluates a candidate password and returns a score from 0 to
// 5 with feedback for each missing property. The score is advisory only and
// never blocks an operation.
func ScoreStrength(candidate string) (int, []string) {
	var (
		score    int
		feedback []string

		hasLower, hasUpper, hasDigit, hasSymbol bool
	)

	for _, r := range candidate {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if len(candidate) >= 8 {
		score++
	} else {
		feedback = append(feedback, "Use at least 8 characters")
	}
	if hasLower {
		score++
	} else {
		feedback = append(feedback, "Include lowercase letters")
	}
	if hasUpper {
		score++
	} else {
		feedback = append(feedback, "Include uppercase letters")
	}
	if hasDigit {
		score++
	} else {
		feedback = append(feedback, "Include numbers")
	}
	if hasSymbol {
		score++
	} else {
		feedback = append(feedback, "Include special characters")
	}

	return score, feedback
}
