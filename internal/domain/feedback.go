package domain

import (
	"fmt"
	"time"
)

// DefaultFeedbackCategories is the rubric used when no config overrides it.
var DefaultFeedbackCategories = []string{
	"Communication Skills",
	"Technical Knowledge",
	"Problem Solving",
	"Cultural & Role Fit",
	"Confidence & Clarity",
}

type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// FeedbackReport is the scored outcome of one assessed interview.
type FeedbackReport struct {
	ID                  string
	InterviewID         string
	UserID              string
	TotalScore          int
	CategoryScores      []CategoryScore
	Strengths           []string
	AreasForImprovement []string
	FinalAssessment     string
	CreatedAt           time.Time
}

// Assessment is what a scorer returns before it becomes a stored report.
type Assessment struct {
	TotalScore          int             `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
}

// Clamp forces every score into the 0-100 range.
func (a *Assessment) Clamp() {
	a.TotalScore = ClampScore(a.TotalScore)
	for i := range a.CategoryScores {
		a.CategoryScores[i].Score = ClampScore(a.CategoryScores[i].Score)
	}
}

func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Validate rejects reports with scores outside 0-100 or missing keys.
func (f *FeedbackReport) Validate() error {
	if f.InterviewID == "" || f.UserID == "" {
		return fmt.Errorf("feedback needs an interview and a user")
	}
	if f.TotalScore < 0 || f.TotalScore > 100 {
		return fmt.Errorf("total score %d out of range", f.TotalScore)
	}
	for _, c := range f.CategoryScores {
		if c.Score < 0 || c.Score > 100 {
			return fmt.Errorf("category %q score %d out of range", c.Name, c.Score)
		}
	}
	return nil
}

// ScoreBand buckets a score for display.
type ScoreBand string

const (
	ScoreGood ScoreBand = "good"
	ScoreFair ScoreBand = "fair"
	ScorePoor ScoreBand = "poor"
)

func BandFor(score int) ScoreBand {
	switch {
	case score >= 80:
		return ScoreGood
	case score >= 60:
		return ScoreFair
	default:
		return ScorePoor
	}
}
