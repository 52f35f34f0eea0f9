package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/infrastructure/httpserver"
)

type registrationServiceMock struct {
	issueCodeFn func(ctx context.Context, email string) (string, error)
	verifyFn    func(ctx context.Context, email, code string) (string, error)
}

func (m *registrationServiceMock) IssueCode(ctx context.Context, email string) (string, error) {
	if m.issueCodeFn != nil {
		return m.issueCodeFn(ctx, email)
	}
	return registration.NormalizeEmail(email), nil
}

func (m *registrationServiceMock) Verify(ctx context.Context, email, code string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, email, code)
	}
	return "signed-token", nil
}

func newTestServer(svc *registrationServiceMock) *httpserver.Server {
	cfg := &httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}
	deps := httpserver.ServerDeps{RegistrationService: svc}
	return httpserver.NewServer(cfg, logrus.New(), deps)
}

func postJSON(t *testing.T, server *httpserver.Server, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)
	return rec
}

func TestIssueCodeEndpoint_Accepted(t *testing.T) {
	svc := &registrationServiceMock{}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/apply", map[string]string{"email": "A@B.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "a@b.com", resp["email"])
}

func TestIssueCodeEndpoint_Conflict(t *testing.T) {
	svc := &registrationServiceMock{
		issueCodeFn: func(ctx context.Context, email string) (string, error) {
			return "", &registration.ConflictError{Message: "a new code can be requested in 42 seconds", RetryAfter: 42 * time.Second}
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/apply", map[string]string{"email": "a@b.com"})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestIssueCodeEndpoint_ValidationFailed(t *testing.T) {
	svc := &registrationServiceMock{
		issueCodeFn: func(ctx context.Context, email string) (string, error) {
			return "", &registration.ValidationError{Fields: []registration.FieldError{{Field: "email", Message: "email must not be empty"}}}
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/apply", map[string]string{"email": ""})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Errors []registration.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	require.Equal(t, "email", resp.Errors[0].Field)
}

func TestVerifyEndpoint_Success(t *testing.T) {
	svc := &registrationServiceMock{
		verifyFn: func(ctx context.Context, email, code string) (string, error) {
			require.Equal(t, "a@b.com", email)
			require.Equal(t, "4821", code)
			return "signed-token", nil
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/register", map[string]string{"email": "a@b.com", "code": "4821"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "signed-token", resp["token"])
}

func TestVerifyEndpoint_QueryParams(t *testing.T) {
	svc := &registrationServiceMock{
		verifyFn: func(ctx context.Context, email, code string) (string, error) {
			require.Equal(t, "a@b.com", email)
			require.Equal(t, "4821", code)
			return "signed-token", nil
		},
	}
	server := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register?email=a@b.com&code=4821", nil)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyEndpoint_NotFound(t *testing.T) {
	svc := &registrationServiceMock{
		verifyFn: func(ctx context.Context, email, code string) (string, error) {
			return "", registration.ErrCodeNotFound
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/register", map[string]string{"email": "a@b.com", "code": "4821"})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyEndpoint_InvalidCode(t *testing.T) {
	svc := &registrationServiceMock{
		verifyFn: func(ctx context.Context, email, code string) (string, error) {
			return "", registration.ErrInvalidCode
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/register", map[string]string{"email": "a@b.com", "code": "0000"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEndpoint_AlreadyRegistered(t *testing.T) {
	svc := &registrationServiceMock{
		verifyFn: func(ctx context.Context, email, code string) (string, error) {
			return "", &registration.ConflictError{Message: "already registered"}
		},
	}
	server := newTestServer(svc)

	rec := postJSON(t, server, "/api/v1/register", map[string]string{"email": "a@b.com", "code": "4821"})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, rec.Header().Get("Retry-After"))
}
