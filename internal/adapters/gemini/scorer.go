package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

const scorerSystem = "You are a professional interviewer analyzing a mock interview. " +
	"Your task is to evaluate the candidate based on structured categories. " +
	"Be thorough and detailed. Don't be lenient with the candidate. " +
	"If there are mistakes or areas for improvement, point them out."

var scoreRange = struct{ min, max float64 }{0, 100}

func assessmentSchema() *genai.Schema {
	score := &genai.Schema{Type: genai.TypeInteger, Minimum: &scoreRange.min, Maximum: &scoreRange.max}
	text := &genai.Schema{Type: genai.TypeString}
	list := &genai.Schema{Type: genai.TypeArray, Items: text}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"totalScore": score,
			"categoryScores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":    text,
						"score":   score,
						"comment": text,
					},
					Required: []string{"name", "score", "comment"},
				},
			},
			"strengths":           list,
			"areasForImprovement": list,
			"finalAssessment":     text,
		},
		Required: []string{"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment"},
	}
}

// Score rates a formatted transcript in each of the given categories.
func (c *Client) Score(ctx context.Context, transcript string, categories []string) (*domain.Assessment, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	if len(categories) == 0 {
		categories = domain.DefaultFeedbackCategories
	}

	var b strings.Builder
	b.WriteString("You are an AI interviewer analyzing a mock interview. ")
	b.WriteString("Your task is to evaluate the candidate based on structured categories.\n")
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nPlease score the candidate from 0 to 100 in the following areas. ")
	b.WriteString("Do not add categories other than the ones provided:\n")
	for _, cat := range categories {
		b.WriteString("- ")
		b.WriteString(cat)
		b.WriteString("\n")
	}

	var out domain.Assessment
	if err := c.generateJSON(ctx, scorerSystem, b.String(), assessmentSchema(), &out); err != nil {
		return nil, fmt.Errorf("score transcript: %w", err)
	}
	return &out, nil
}
