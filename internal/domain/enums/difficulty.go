package enums

import "strings"

type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// NormalizeDifficulty only lowercases: a tag with stray whitespace is a
// present but unknown tag.
func NormalizeDifficulty(raw string) Difficulty {
	return Difficulty(strings.ToLower(raw))
}
