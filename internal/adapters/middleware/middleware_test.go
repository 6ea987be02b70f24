package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/middleware"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type counter struct {
	calls int
}

func (c *counter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	c.calls++
	w.WriteHeader(http.StatusTeapot)
}

func TestHandler_PassesThroughOnSuccess(t *testing.T) {
	outcomes := []domain.Outcome{
		domain.OutcomeNotApplicable,
		domain.OutcomeSourceMissing,
		domain.OutcomeFresh,
		domain.OutcomeBuilt,
		domain.OutcomeJoined,
	}

	for _, outcome := range outcomes {
		t.Run(outcome.String(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			compiler := mocks.NewMockAssetCompiler(ctrl)
			compiler.EXPECT().Ensure(gomock.Any(), "/css/app.css").Return(outcome, nil)

			next := &counter{}
			rec := httptest.NewRecorder()
			middleware.New(compiler).Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/app.css?v=2", nil))

			assert.Equal(t, 1, next.calls)
			assert.Equal(t, http.StatusTeapot, rec.Code)
		})
	}
}

func TestHandler_IgnoresOtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			compiler := mocks.NewMockAssetCompiler(ctrl)

			next := &counter{}
			rec := httptest.NewRecorder()
			middleware.New(compiler).Handler(next).ServeHTTP(rec, httptest.NewRequest(method, "/app.css", nil))

			assert.Equal(t, 1, next.calls)
		})
	}
}

func TestHandler_DefaultErrorHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	compiler := mocks.NewMockAssetCompiler(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	buildErr := &domain.TransformError{Name: "stylus", Message: "expected indent"}
	compiler.EXPECT().Ensure(gomock.Any(), "/app.css").Return(domain.OutcomeBuilt, buildErr)
	logger.EXPECT().Error(gomock.Cond(func(err error) bool {
		var zErr *zerr.Error
		return errors.As(err, &zErr) && zErr.Metadata()["path"] == "/app.css" && errors.Is(err, domain.ErrTransformFailed)
	}))

	next := &counter{}
	rec := httptest.NewRecorder()
	middleware.New(compiler, middleware.WithLogger(logger)).Handler(next).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.css", nil))

	assert.Zero(t, next.calls)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error\n", rec.Body.String())
}

func TestHandler_DefaultErrorHandlerWithoutLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	compiler := mocks.NewMockAssetCompiler(ctrl)
	compiler.EXPECT().Ensure(gomock.Any(), "/app.js").Return(domain.OutcomeJoined, domain.ErrBuildWaitTimeout)

	rec := httptest.NewRecorder()
	middleware.New(compiler).Handler(&counter{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_CustomErrorHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	compiler := mocks.NewMockAssetCompiler(ctrl)
	writeErr := zerr.With(domain.ErrWriteFailed, "path", "/srv/public/app.css")
	compiler.EXPECT().Ensure(gomock.Any(), "/app.css").Return(domain.OutcomeBuilt, writeErr)

	var got []error
	handler := func(w http.ResponseWriter, _ *http.Request, err error) {
		got = append(got, err)
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	next := &counter{}
	rec := httptest.NewRecorder()
	middleware.New(compiler, middleware.WithErrorHandler(handler)).Handler(next).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.css", nil))

	require.Len(t, got, 1)
	assert.ErrorContains(t, got[0], domain.ErrWriteFailed.Error())
	assert.Zero(t, next.calls)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_PassesRequestContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	compiler := mocks.NewMockAssetCompiler(ctrl)

	type ctxKey struct{}
	req := httptest.NewRequest(http.MethodGet, "/app.css", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "request"))

	compiler.EXPECT().Ensure(gomock.Cond(func(ctx context.Context) bool {
		return ctx.Value(ctxKey{}) == "request"
	}), "/app.css").Return(domain.OutcomeFresh, nil)

	middleware.New(compiler).Handler(&counter{}).ServeHTTP(httptest.NewRecorder(), req)
}
