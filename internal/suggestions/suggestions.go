// Package suggestions answers "what should we do?" from a fixed table.
package suggestions

import (
	"fmt"
	"strings"

	"github.com/Harshita2766/planpull-backend/internal/apperrors"
	"github.com/Harshita2766/planpull-backend/internal/models"
)

// Moods with a dedicated list. Any other mood gets the fallback list.
const (
	MoodEnergetic = "Energetic"
	MoodRelaxed   = "Relaxed"
	MoodHungry    = "Hungry"
	MoodCreative  = "Creative"
	MoodRomantic  = "Romantic"
)

type entry struct {
	name string
	// description is a format string with one %s for the location.
	description string
}

var table = map[string][]entry{
	MoodEnergetic: {
		{"Hiking Trail", "Explore the best hiking trails around %s."},
		{"Rock Climbing", "Try an indoor climbing gym in %s."},
		{"Dance Class", "Join a drop-in dance class in %s."},
	},
	MoodRelaxed: {
		{"Spa Day", "Unwind at a spa in %s."},
		{"Park Picnic", "Have a picnic in a quiet park in %s."},
		{"Bookstore Cafe", "Spend an afternoon at a bookstore cafe in %s."},
	},
	MoodHungry: {
		{"Food Tour", "Sample local favorites on a food tour of %s."},
		{"Street Food Market", "Graze the street food stalls in %s."},
		{"Brunch Spot", "Find a popular brunch spot in %s."},
	},
	MoodCreative: {
		{"Pottery Workshop", "Get your hands dirty at a pottery workshop in %s."},
		{"Art Gallery", "Visit galleries and exhibitions in %s."},
		{"Paint and Sip", "Book a paint and sip evening in %s."},
	},
	MoodRomantic: {
		{"Sunset Viewpoint", "Catch the sunset from a viewpoint in %s."},
		{"Candlelight Dinner", "Reserve a candlelight dinner in %s."},
		{"Stargazing", "Find a dark-sky spot for stargazing near %s."},
	},
}

var fallback = []entry{
	{"Local Landmarks", "See the best-known landmarks in %s."},
	{"Movie Night", "Catch a new release at a cinema in %s."},
	{"Board Game Cafe", "Play board games at a cafe in %s."},
}

// Suggest returns the suggestions for mood with location filled in.
// Mood matching ignores case and surrounding space.
func Suggest(location, mood string) ([]models.Suggestion, error) {
	location = strings.TrimSpace(location)
	mood = strings.TrimSpace(mood)
	if location == "" {
		return nil, apperrors.Validation("location is required")
	}
	if mood == "" {
		return nil, apperrors.Validation("mood is required")
	}

	entries := fallback
	for m, list := range table {
		if strings.EqualFold(m, mood) {
			entries = list
			break
		}
	}
	out := make([]models.Suggestion, len(entries))
	for i, e := range entries {
		out[i] = models.Suggestion{Name: e.name, Description: fmt.Sprintf(e.description, location)}
	}
	return out, nil
}
