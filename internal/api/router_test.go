package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/student-registry/registry-api/internal/api/handler"
	"github.com/student-registry/registry-api/internal/core/service"
	"github.com/student-registry/registry-api/internal/infrastructure/db/gormdb"
	"github.com/student-registry/registry-api/internal/infrastructure/photohost"
	"github.com/student-registry/registry-api/internal/infrastructure/token"
)

type testServer struct {
	e       *echo.Echo
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gormdb.Open(context.Background(), gormdb.Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormdb.Close(db) })

	photos, err := photohost.NewLocal(t.TempDir(), "http://localhost:8080/uploads", log)
	require.NoError(t, err)

	tokens := token.NewManager("test-secret", time.Hour, 24*time.Hour)
	e := NewRouter(Options{
		Logger:         log,
		AuthService:    service.NewAuthService(gormdb.NewUserRepository(db), tokens, log),
		StudentService: service.NewStudentService(gormdb.NewStudentRepository(db), photos, log),
		Tokens:         tokens,
		Cookies:        handler.CookieConfig{SameSite: http.SameSiteLaxMode},
		CORSOrigin:     "http://localhost:3000",
		BodyLimit:      "1M",
		Photos:         photos,
		Checks: map[string]handler.Check{
			"database": func(ctx context.Context) error { return gormdb.Ping(ctx, db) },
		},
		Registerer: prometheus.NewRegistry(),
	})
	return &testServer{e: e}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		s.setCookie(c)
	}
	return rec
}

func (s *testServer) setCookie(c *http.Cookie) {
	kept := s.cookies[:0]
	for _, existing := range s.cookies {
		if existing.Name != c.Name {
			kept = append(kept, existing)
		}
	}
	if c.MaxAge >= 0 && c.Value != "" {
		kept = append(kept, c)
	}
	s.cookies = kept
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.do(req)
}

func (s *testServer) registerStudent(t *testing.T, regNo, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("registration_number", regNo))
	require.NoError(t, w.WriteField("firstname", "Ada"))
	require.NoError(t, w.WriteField("lastname", "Lovelace"))
	part, err := w.CreateFormFile("student-photo", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register-student", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_AuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/api/register-user", `{"username":"alice","email":"alice@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.postJSON("/api/register-user", `{"username":"alice","email":"other@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username or email already exists", decode(t, rec)["error"])

	rec = s.postJSON("/api/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.postJSON("/api/login", `{"email":"alice@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, s.cookies, 2)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/protected", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "Welcome User ")

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.cookies)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RegisterUserValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/api/register-user", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.postJSON("/api/register-user", `not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StudentFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/students", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.registerStudent(t, "2023/001", "ada.PNG")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.registerStudent(t, "2023/001", "ada.png")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.registerStudent(t, "2023/002", "ada.gif")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/students", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var students []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, "2023/001", students[0]["registrationNumber"])
	assert.Equal(t, "Lovelace", students[0]["lastName"])

	photoURL, _ := students[0]["photo"].(string)
	assert.True(t, strings.HasSuffix(photoURL, "/students/2023_001"), photoURL)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/uploads/students/2023_001", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}

func TestRouter_Operations(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_StudentPhotoURLResolves(t *testing.T) {
	s := newTestServer(t)

	numbers := []string{"2023#1", "2023?x=1", "2023 001", ".", ".."}
	for _, regNo := range numbers {
		rec := s.registerStudent(t, regNo, "photo.png")
		require.Equal(t, http.StatusCreated, rec.Code, "%q: %s", regNo, rec.Body.String())
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/students", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var students []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, len(numbers))

	for i, st := range students {
		assert.Equal(t, numbers[i], st["registrationNumber"])

		photoURL, _ := st["photo"].(string)
		u, err := url.Parse(photoURL)
		require.NoError(t, err, photoURL)
		assert.Empty(t, u.RawQuery, photoURL)
		assert.Empty(t, u.Fragment, photoURL)

		rec := s.do(httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
		assert.Equal(t, http.StatusOK, rec.Code, "%q -> %s", numbers[i], u.RequestURI())
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	}
}
