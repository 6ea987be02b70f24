package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// FreshnessOracle decides whether an artifact must be rebuilt from its source.
//
//go:generate go run go.uber.org/mock/mockgen -source=oracle.go -destination=mocks/mock_oracle.go -package=mocks
type FreshnessOracle interface {
	// Check compares the source against the destination.
	// Errors other than "not found" on either path are returned as stat failures.
	Check(ctx context.Context, source, dest string) (domain.Verdict, error)
}
