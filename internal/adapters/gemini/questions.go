package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/emiliopalmerini/nexa/internal/ports"
)

const questionsSystem = "You prepare questions for a job interview that is read aloud by a voice assistant."

// Generate drafts the questions for a new interview.
func (c *Client) Generate(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("question amount must be positive")
	}

	prompt := fmt.Sprintf(`Prepare questions for a job interview.
The job role is %s.
The job experience level is %s.
The tech stack used in the job is: %s.
The focus between behavioural and technical questions should lean towards: %s.
The amount of questions required is: %d.
Please return only the questions, without any additional text.
The questions are going to be read by a voice assistant so do not use "/" or "*" or any other special characters which might break the voice assistant.`,
		req.Role, req.Level, strings.Join(req.Techstack, ", "), req.Type, req.Amount)

	schema := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	var questions []string
	if err := c.generateJSON(ctx, questionsSystem, prompt, schema, &questions); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	out := questions[:0]
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
