package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unisupport/internal/config"
	"github.com/yigit/unisupport/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@uni.edu"
	adminPassword = "admin-secret"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.Mode = "test"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "unisupport-test"
	cfg.Session.CookieName = "token"
	cfg.Seed.AdminEmail = adminEmail
	cfg.Seed.AdminPassword = adminPassword
	cfg.Seed.AdminName = "Root Admin"
	return cfg
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	cfg := testConfig()
	lgr := zerolog.Nop()

	deps, err := BuildDependencies(cfg, nil, auth.NewMemoryRevocationStore(), lgr)
	require.NoError(t, err)
	require.NoError(t, SeedDefaultAdmin(context.Background(), cfg, deps))

	router, err := SetupRouter(cfg, deps, lgr)
	require.NoError(t, err)
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) login(email, password string) *http.Cookie {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	a.t.Fatal("login did not set the session cookie")
	return nil
}

// registerApproved registers a student, approves the account and logs in
func (a *apiClient) registerApproved(admin *http.Cookie, email string) (int64, *http.Cookie) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "student-secret",
		"name":     "Jane Student",
		"major":    "Computer Science",
	}, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var student struct {
		ID         int64  `json:"id"`
		AccountID  int64  `json:"account_id"`
		AcademicID string `json:"academic_id"`
	}
	decode(a.t, rec, &student)
	assert.Regexp(a.t, `^STU\d{5}$`, student.AcademicID)

	rec = a.do(http.MethodPatch, fmt.Sprintf("/api/accounts/%d/status", student.AccountID), map[string]string{"status": "approved"}, admin)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	return student.ID, a.login(email, "student-secret")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decode(t, rec, &body)
	assert.False(t, body.Success)
	return body.Error
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"memory"}`, rec.Body.String())
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/students", "/api/admins", "/api/issues", "/api/feedback/stats", "/api/user", "/api/chatbot-instructions"} {
		rec := api.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	bogus := &http.Cookie{Name: "token", Value: "not-a-jwt"}
	rec := api.do(http.MethodGet, "/api/students", nil, bogus)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"accountType":"admin"}`, rec.Body.String())

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, int(auth.TokenTTL.Seconds()), session.MaxAge)

	rec = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@uni.edu", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))
}

func TestRegisterAndApprovalFlow(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)

	rec := api.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "pending@uni.edu", "password": "student-secret", "name": "Pending Student",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "pending@uni.edu", "password": "student-secret"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "pending@uni.edu", "password": "student-secret", "name": "Duplicate",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	studentID, student := api.registerApproved(admin, "jane@uni.edu")

	rec = api.do(http.MethodGet, "/api/user", nil, student)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		StudentID   *int64 `json:"studentId"`
		AccountType string `json:"accountType"`
	}
	decode(t, rec, &me)
	require.NotNil(t, me.StudentID)
	assert.Equal(t, studentID, *me.StudentID)
	assert.Equal(t, "student", me.AccountType)
}

func TestStudentTokenForbiddenOnAdminEndpoints(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	_, student := api.registerApproved(admin, "jane@uni.edu")

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/students", nil},
		{http.MethodPost, "/api/students", map[string]string{"email": "x@uni.edu", "password": "secret123", "name": "X Y"}},
		{http.MethodGet, "/api/admins", nil},
		{http.MethodPost, "/api/admins", map[string]string{"email": "y@uni.edu", "password": "secret123", "name": "Y Z"}},
		{http.MethodGet, "/api/accounts", nil},
		{http.MethodPatch, "/api/accounts/1/status", map[string]string{"status": "suspended"}},
		{http.MethodGet, "/api/issues", nil},
		{http.MethodGet, "/api/feedback/stats", nil},
		{http.MethodPost, "/api/chatbot-instructions", map[string]string{"title": "t", "content": "c"}},
	}
	for _, tc := range cases {
		rec := api.do(tc.method, tc.path, tc.body, student)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestChatWithInitialMessage(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	studentID, student := api.registerApproved(admin, "jane@uni.edu")

	rec := api.do(http.MethodPost, fmt.Sprintf("/api/chats/student/%d", studentID), map[string]string{"initialMessage": "hi"}, student)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var chat struct {
		ID         int64   `json:"id"`
		MessageIDs []int64 `json:"message_ids"`
		Messages   []struct {
			MessageID   int64  `json:"message_id"`
			From        string `json:"from"`
			MessageText string `json:"message_text"`
		} `json:"messages"`
	}
	decode(t, rec, &chat)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "student", chat.Messages[0].From)
	assert.Equal(t, "hi", chat.Messages[0].MessageText)
	assert.Equal(t, []int64{chat.Messages[0].MessageID}, chat.MessageIDs)

	// Another student cannot read or write the chat
	_, other := api.registerApproved(admin, "other@uni.edu")
	rec = api.do(http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodPost, fmt.Sprintf("/api/chats/student/%d", studentID), nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuspendAccountWithReason(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)

	rec := api.do(http.MethodPost, "/api/students", map[string]string{
		"email": "bad@uni.edu", "password": "secret123", "name": "Bad Actor",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var student struct {
		AccountID int64 `json:"account_id"`
	}
	decode(t, rec, &student)

	rec = api.do(http.MethodPatch, fmt.Sprintf("/api/accounts/%d/status", student.AccountID), map[string]string{
		"status": "suspended", "suspension_reason": "abuse",
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var account struct {
		Status           string  `json:"status"`
		SuspendedAt      *string `json:"suspended_at"`
		SuspensionReason *string `json:"suspension_reason"`
	}
	decode(t, rec, &account)
	assert.Equal(t, "suspended", account.Status)
	assert.NotNil(t, account.SuspendedAt)
	require.NotNil(t, account.SuspensionReason)
	assert.Equal(t, "abuse", *account.SuspensionReason)

	rec = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "bad@uni.edu", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeedbackValidationAndStats(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	_, student := api.registerApproved(admin, "jane@uni.edu")

	for _, rating := range []int{0, 6} {
		rec := api.do(http.MethodPost, "/api/feedback", map[string]int{"rating": rating}, student)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
	}

	rec := api.do(http.MethodPost, "/api/feedback", map[string]int{"rating": 4}, admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, rating := range []int{5, 3} {
		rec = api.do(http.MethodPost, "/api/feedback", map[string]int{"rating": rating}, student)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodGet, "/api/feedback/stats", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats struct {
		Count   int64   `json:"count"`
		Average float64 `json:"average"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, int64(2), stats.Count)
	assert.InDelta(t, 4.0, stats.Average, 0.001)

	rec = api.do(http.MethodGet, "/api/feedback/stats?startDate=not-a-date", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentListPagination(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)

	for i := 0; i < 5; i++ {
		rec := api.do(http.MethodPost, "/api/students", map[string]string{
			"email": fmt.Sprintf("s%d@uni.edu", i), "password": "secret123", "name": fmt.Sprintf("Student %d", i),
		}, admin)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	for _, tc := range []struct{ page, limit int }{{1, 2}, {3, 2}, {1, 10}, {2, 3}} {
		rec := api.do(http.MethodGet, fmt.Sprintf("/api/students?page=%d&limit=%d", tc.page, tc.limit), nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)

		var page struct {
			Items       []json.RawMessage `json:"items"`
			CurrentPage int               `json:"currentPage"`
			TotalPages  int               `json:"totalPages"`
			Total       int64             `json:"total"`
		}
		decode(t, rec, &page)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, tc.page, page.CurrentPage)
		assert.LessOrEqual(t, len(page.Items), tc.limit)
		assert.Equal(t, int(math.Ceil(5/float64(tc.limit))), page.TotalPages)
	}

	rec := api.do(http.MethodGet, "/api/students?page=9223372036854775807&limit=100", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var beyond struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
	}
	decode(t, rec, &beyond)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(5), beyond.Total)

	rec = api.do(http.MethodGet, "/api/students?search=student%204", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &filtered)
	assert.Equal(t, int64(1), filtered.Total)
}

func TestIssueIDsAndAssignment(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	studentID, student := api.registerApproved(admin, "jane@uni.edu")

	var previous int64
	var firstID int64
	for i := 0; i < 3; i++ {
		rec := api.do(http.MethodPost, fmt.Sprintf("/api/issues/student/%d", studentID), map[string]string{
			"details": "Cannot access the portal", "type": "technical",
		}, student)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var issue struct {
			ID      int64  `json:"id"`
			IssueID int64  `json:"issue_id"`
			Status  string `json:"status"`
		}
		decode(t, rec, &issue)
		assert.GreaterOrEqual(t, issue.IssueID, int64(1000))
		assert.Greater(t, issue.IssueID, previous)
		assert.Equal(t, "open", issue.Status)
		previous = issue.IssueID
		if firstID == 0 {
			firstID = issue.ID
		}
	}

	rec := api.do(http.MethodPut, fmt.Sprintf("/api/issues/%d", firstID), map[string]string{"status": "resolved"}, student)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, fmt.Sprintf("/api/issues/%d", firstID), map[string]string{"status": "resolved"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPut, fmt.Sprintf("/api/issues/%d", firstID), map[string]string{"status": "open"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, fmt.Sprintf("/api/issues/%d/assign", firstID), map[string]int64{"adminId": 9999}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/issues?status=resolved", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &resolved)
	assert.Equal(t, int64(1), resolved.Total)
}

func TestMessageReferenceMustBelongToStudent(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	aliceID, alice := api.registerApproved(admin, "alice@uni.edu")
	bobID, bob := api.registerApproved(admin, "bob@uni.edu")

	rec := api.do(http.MethodPost, fmt.Sprintf("/api/chats/student/%d", aliceID), map[string]string{"initialMessage": "help"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var chat struct {
		ID         int64   `json:"id"`
		MessageIDs []int64 `json:"message_ids"`
	}
	decode(t, rec, &chat)
	require.Len(t, chat.MessageIDs, 1)
	messageID := chat.MessageIDs[0]

	rec = api.do(http.MethodPost, fmt.Sprintf("/api/issues/student/%d", bobID), map[string]interface{}{
		"details": "x", "type": "t", "message_id": messageID,
	}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, fmt.Sprintf("/api/issues/student/%d", bobID), map[string]interface{}{
		"details": "x", "type": "t", "message_id": 424242,
	}, bob)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/feedback", map[string]interface{}{"rating": 1, "message_id": messageID}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, fmt.Sprintf("/api/issues/student/%d", aliceID), map[string]interface{}{
		"details": "x", "type": "t", "message_id": messageID,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var issue struct {
		ChatID *int64 `json:"chat_id"`
	}
	decode(t, rec, &issue)
	require.NotNil(t, issue.ChatID)
	assert.Equal(t, chat.ID, *issue.ChatID)
}

func TestSuspensionEndsOpenSession(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	studentID, student := api.registerApproved(admin, "jane@uni.edu")

	rec := api.do(http.MethodGet, "/api/user", nil, student)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, fmt.Sprintf("/api/students/%d", studentID), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile struct {
		AccountID int64 `json:"account_id"`
	}
	decode(t, rec, &profile)

	rec = api.do(http.MethodPatch, fmt.Sprintf("/api/accounts/%d/status", profile.AccountID), map[string]string{"status": "suspended"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/user", nil, student)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/user", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudentUpdateWithBlankNameKeepsLogin(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)
	studentID, _ := api.registerApproved(admin, "jane@uni.edu")

	rec := api.do(http.MethodPut, fmt.Sprintf("/api/students/%d", studentID), map[string]string{
		"email": "renamed@uni.edu", "name": "   ",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "renamed@uni.edu", "password": "student-secret"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	api.login("jane@uni.edu", "student-secret")
}

func TestLogoutRevokesSession(t *testing.T) {
	api := newAPI(t)
	admin := api.login(adminEmail, adminPassword)

	rec := api.do(http.MethodPost, "/api/auth/logout", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/user", nil, admin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/api/does-not-exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
