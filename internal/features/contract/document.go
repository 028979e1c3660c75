package contract

import (
	"context"

	"go-negotiation/internal/features/negotiation"

	"github.com/google/uuid"
)

// DocumentGenerator issues the number of a new contract document.
type DocumentGenerator interface {
	Generate(ctx context.Context, n *negotiation.Negotiation) (string, error)
}

type uuidGenerator struct{}

func NewDocumentGenerator() DocumentGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) Generate(ctx context.Context, n *negotiation.Negotiation) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return "CTR-" + id.String(), nil
}
