package portfolio

import (
	"context"

	"github.com/google/uuid"
)

// GenerateRequest is what the generator receives for one portfolio build.
type GenerateRequest struct {
	UserID      string
	PortfolioID string
	Options     map[string]any
}

type GenerateResult struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Generator builds a portfolio site. Implementations are external.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// QueuedGenerator acknowledges every request without doing work.
type QueuedGenerator struct{}

func (QueuedGenerator) Generate(ctx context.Context, _ GenerateRequest) (GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return GenerateResult{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{JobID: id.String(), Status: "queued"}, nil
}
