package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/dmitrijs2005/learnprogress/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	out *services.ExportedReport
	err error
}

func (f *fakeExporter) ExportReport(context.Context) (*services.ExportedReport, error) {
	return f.out, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

// brokenAccounts fails every call with err, or panics when err is nil.
type brokenAccounts struct {
	AccountService
	err error
}

func (b brokenAccounts) ListAccounts(context.Context) ([]*models.AccountSummary, error) {
	if b.err == nil {
		panic("kaboom")
	}
	return nil, b.err
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)

	rec := env.do(t, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	require.NoError(t, env.db.Close())
	rec = env.do(t, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","database":"unavailable"}`, rec.Body.String())
}

func TestHealth_PingerVariants(t *testing.T) {
	h := NewServer(brokenAccounts{}, nil, nil, fakePinger{err: errors.New("down")}, Options{}, logging.NewNopLogger()).Handler()
	rec := serve(t, h, request{method: http.MethodGet, path: "/health"})
	assert.JSONEq(t, `{"status":"degraded","database":"unavailable"}`, rec.Body.String())

	h = NewServer(brokenAccounts{}, nil, nil, nil, Options{}, logging.NewNopLogger()).Handler()
	rec = serve(t, h, request{method: http.MethodGet, path: "/health"})
	assert.JSONEq(t, `{"status":"ok","database":"unknown"}`, rec.Body.String())
}

func TestExportReport(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	assert.Equal(t, http.StatusNotFound, env.do(t, request{method: http.MethodPost, path: "/exportReport"}).Code,
		"route absent without storage")

	exp := &fakeExporter{out: &services.ExportedReport{Key: "reports/2025/01/01/x.json", URL: "http://signed"}}
	env = newTestEnv(t, Options{}, exp)

	rec := env.do(t, request{method: http.MethodPost, path: "/exportReport"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Report exported successfully","key":"reports/2025/01/01/x.json","url":"http://signed"}`, rec.Body.String())

	exp.out, exp.err = nil, errors.New("upload failed")
	rec = env.do(t, request{method: http.MethodPost, path: "/exportReport"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInternalErrors_RedactedInProduction(t *testing.T) {
	cause := errors.New("db error: connection reset")

	dev := NewServer(brokenAccounts{err: cause}, nil, nil, nil, Options{}, logging.NewNopLogger()).Handler()
	rec := serve(t, dev, request{method: http.MethodGet, path: "/getAllUsers"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, message(t, rec), "connection reset")

	prod := NewServer(brokenAccounts{err: cause}, nil, nil, nil, Options{Production: true}, logging.NewNopLogger()).Handler()
	rec = serve(t, prod, request{method: http.MethodGet, path: "/getAllUsers"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, internalErrorMessage, message(t, rec))
}

func TestPanicRecovery(t *testing.T) {
	h := NewServer(brokenAccounts{}, nil, nil, nil, Options{Production: true}, logging.NewNopLogger()).Handler()

	rec := serve(t, h, request{method: http.MethodGet, path: "/getAllUsers"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, internalErrorMessage, message(t, rec))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrConflict, http.StatusBadRequest},
		{common.ErrInvalidCredentials, http.StatusBadRequest},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrorInternal, http.StatusInternalServerError},
		{errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)

	rec := env.do(t, request{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", message(t, rec))

	rec = env.do(t, request{method: http.MethodGet, path: "/register"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
