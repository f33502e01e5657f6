package password

import "strings"

const (
	// MinLength is the minimum accepted password length.
	MinLength = 8
	// MaxLength is the maximum accepted password length. Longer input is
	// rejected before any hashing work happens.
	MaxLength = 128
	// minScore is the score threshold below which a password is rejected
	// even when no individual check produced feedback.
	minScore = 4
)

// commonSequences are substrings that make a password trivially guessable.
var commonSequences = []string{"123456", "654321", "qwerty", "password", "admin"}

// Strength is the result of a password strength evaluation.
type Strength struct {
	Valid    bool     `json:"valid"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// ValidateStrength scores a password deterministically: same input, same
// result, always.
//
// Scoring: length >= 12 earns 2 points, >= 8 earns 1; one point each for a
// lowercase letter, an uppercase letter, a digit, and a special character;
// minus 2 per weak pattern (a run of 3+ identical characters, or a common
// sequence such as "qwerty"). Valid requires an empty feedback list AND a
// score of at least 4.
func ValidateStrength(pw string) Strength {
	var feedback []string
	score := 0

	switch {
	case len(pw) < MinLength:
		feedback = append(feedback, "password must be at least 8 characters long")
	case len(pw) >= 12:
		score += 2
	default:
		score++
	}

	classes := []struct {
		present bool
		missing string
	}{
		{strings.ContainsFunc(pw, func(r rune) bool { return r >= 'a' && r <= 'z' }), "password must contain at least one lowercase letter"},
		{strings.ContainsFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }), "password must contain at least one uppercase letter"},
		{strings.ContainsFunc(pw, func(r rune) bool { return r >= '0' && r <= '9' }), "password must contain at least one number"},
		{strings.ContainsAny(pw, `!@#$%^&*()_+-=[]{};':"\|,.<>/?`), "password must contain at least one special character"},
	}
	for _, c := range classes {
		if c.present {
			score++
		} else {
			feedback = append(feedback, c.missing)
		}
	}

	if hasRepeatedRun(pw, 3) {
		feedback = append(feedback, "password contains repeated characters and is easily guessable")
		score -= 2
	}
	if containsCommonSequence(pw) {
		feedback = append(feedback, "password contains common patterns and is easily guessable")
		score -= 2
	}

	if score < 0 {
		score = 0
	}
	return Strength{
		Valid:    len(feedback) == 0 && score >= minScore,
		Score:    score,
		Feedback: feedback,
	}
}

// hasRepeatedRun reports whether pw contains a run of n or more identical
// bytes. Checked byte-wise; Go regexps cannot express backreferences.
func hasRepeatedRun(pw string, n int) bool {
	run := 1
	for i := 1; i < len(pw); i++ {
		if pw[i] == pw[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func containsCommonSequence(pw string) bool {
	lower := strings.ToLower(pw)
	for _, seq := range commonSequences {
		if strings.Contains(lower, seq) {
			return true
		}
	}
	return false
}
