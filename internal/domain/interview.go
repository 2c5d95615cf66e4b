package domain

import (
	"regexp"
	"strings"
	"time"
)

type Interview struct {
	ID         string
	UserID     string
	Role       string
	Level      string
	Type       string
	Techstack  []string
	Questions  []string
	Finalized  bool
	CoverImage string
	CreatedAt  time.Time
}

var mixedType = regexp.MustCompile(`(?i)mix`)

// DisplayType folds any "mixed" spelling into "Mixed".
func (i *Interview) DisplayType() string {
	if mixedType.MatchString(i.Type) {
		return "Mixed"
	}
	return i.Type
}

// InterviewCovers are the cover images picked at random for new interviews.
var InterviewCovers = []string{
	"/static/covers/aurora.svg",
	"/static/covers/basalt.svg",
	"/static/covers/cedar.svg",
	"/static/covers/dune.svg",
	"/static/covers/ember.svg",
	"/static/covers/fjord.svg",
	"/static/covers/glacier.svg",
	"/static/covers/harbor.svg",
	"/static/covers/indigo.svg",
	"/static/covers/juniper.svg",
	"/static/covers/kelp.svg",
	"/static/covers/lagoon.svg",
}

// SplitTechstack parses a comma separated techstack string.
func SplitTechstack(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
