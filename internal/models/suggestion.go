package models

// Suggestion is a canned activity idea returned for a mood.
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
