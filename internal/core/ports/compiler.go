package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// AssetCompiler brings the artifact served at a request path up to date.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type AssetCompiler interface {
	// Ensure resolves requestPath, rebuilds its artifact when stale and reports what happened.
	// A nil error means the request may proceed to the next handler.
	Ensure(ctx context.Context, requestPath string) (domain.Outcome, error)
}
