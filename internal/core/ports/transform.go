package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Transform converts source text into derived text.
//
//go:generate go run go.uber.org/mock/mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks
type Transform interface {
	// Compile returns the derived text, or a *domain.TransformError.
	Compile(ctx context.Context, source []byte) ([]byte, error)
}

// TransformRegistry resolves transform names to bindings and transforms.
type TransformRegistry interface {
	// Enabled returns the bindings of the named transforms in the given order.
	// An empty list is a configuration error.
	Enabled(names []string) ([]domain.Binding, error)

	// Transform returns the transform registered under name.
	Transform(name string) (Transform, error)
}
