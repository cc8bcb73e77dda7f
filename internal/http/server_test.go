package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"department-service/internal/app"
	"department-service/internal/auth"
	"department-service/internal/authz"
	"department-service/internal/config"
	"department-service/internal/domain/profile"
	"department-service/internal/repository/sqlite"
	"department-service/pkg/logger"
	"department-service/pkg/metrics"
	"department-service/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "k9Xq2LmP7vR4tY8wZ1bN6cF3hJ5sD0gA"
	testPassword = "correct-horse-battery"
)

type attachmentSpy struct {
	keys []string
}

func (s *attachmentSpy) Put(_ context.Context, key string, body io.ReadSeeker, _ string) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *attachmentSpy) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://files.example.test/" + key, nil
}

func (s *attachmentSpy) Delete(context.Context, string) error { return nil }

type testEnv struct {
	t     *testing.T
	srv   *Server
	svc   *app.Service
	files *attachmentSpy
}

func newTestEnv(t *testing.T, csrfEnabled bool) *testEnv {
	t.Helper()

	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	store := app.NewSQLiteStore(db)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrator.Migrate(context.Background()))

	cfg := &config.Config{
		Server: config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		JWT:    config.JWTConfig{Secret: testSecret, ExpiryDuration: time.Hour},
		App:    config.AppConfig{MaxUploadSize: 1 << 20, CSRFEnabled: csrfEnabled},
	}

	files := &attachmentSpy{}
	svc := app.NewService(store, authz.NewDepartment(), files, app.Options{
		MaxUploadSize: cfg.App.MaxUploadSize,
		PasswordCost:  password.MinCost,
	})

	srv, err := NewServer(&ServerDependencies{
		Config:     cfg,
		Logger:     logger.New(io.Discard, "error", logger.FormatJSON),
		Service:    svc,
		DB:         db,
		JWTService: auth.NewJWTService(testSecret, time.Hour),
		Metrics:    metrics.NewRecorder(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{t: t, srv: srv, svc: svc, files: files}
}

func (e *testEnv) user(username string, role profile.Role) *profile.Profile {
	e.t.Helper()
	p, err := e.svc.CreateUser(context.Background(), app.CreateUserRequest{
		Username: username, Password: testPassword, Role: role,
	})
	require.NoError(e.t, err)
	return p
}

func (e *testEnv) do(method, target string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookies...)
}

func (e *testEnv) login(username string) *http.Cookie {
	e.t.Helper()
	rec := e.postForm(auth.LoginPath, url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(e.t, http.StatusFound, rec.Code)
	c := cookieNamed(rec, auth.SessionCookieName)
	require.NotNil(e.t, c, "login must set the session cookie")
	return c
}

// follow replays a redirect with the cookies the response set, the way a
// browser shows the next page with its flash message.
func (e *testEnv) follow(rec *httptest.ResponseRecorder, session *http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	require.Equal(e.t, http.StatusFound, rec.Code)
	cookies := []*http.Cookie{session}
	for _, c := range rec.Result().Cookies() {
		if c.Name != auth.SessionCookieName {
			cookies = append(cookies, c)
		}
	}
	return e.do(http.MethodGet, rec.Header().Get("Location"), nil, "", cookies...)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestAnonymousIsSentToLogin(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/assign/", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login/?next=%2Fassign%2F", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/tasks/1/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, auth.LoginPath, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestRateLimits_SessionUserAfterLogin(t *testing.T) {
	env := newTestEnv(t, false)
	env.user("erin", profile.RoleEmployee)
	session := env.login("erin")

	anonymous := env.do(http.MethodGet, auth.LoginPath, nil, "")
	assert.Equal(t, "200", anonymous.Header().Get("X-RateLimit-Limit"))

	signedIn := env.do(http.MethodGet, "/", nil, "", session)
	assert.Equal(t, http.StatusOK, signedIn.Code)
	assert.Equal(t, "40", signedIn.Header().Get("X-RateLimit-Limit"))

	api := env.do(http.MethodGet, "/tasks/1/", nil, "", session)
	assert.Equal(t, "40", api.Header().Get("X-RateLimit-Limit"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false)
	env.user("erin", profile.RoleEmployee)

	rec := env.postForm(auth.LoginPath, url.Values{"username": {"erin"}, "password": {"nope-nope"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), app.MsgInvalidCredentials)
	assert.Nil(t, cookieNamed(rec, auth.SessionCookieName))

	rec = env.postForm(auth.LoginPath, url.Values{
		"username": {"erin"}, "password": {testPassword}, "next": {"/profile/"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/", rec.Header().Get("Location"))

	rec = env.postForm(auth.LoginPath, url.Values{
		"username": {"erin"}, "password": {testPassword}, "next": {"https://evil.example/"},
	})
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.postForm(auth.LoginPath, url.Values{
		"username": {"erin"}, "password": {testPassword}, "next": {"/\t/evil.example/"},
	})
	assert.Equal(t, "/", rec.Header().Get("Location"))

	session := cookieNamed(rec, auth.SessionCookieName)
	rec = env.do(http.MethodPost, "/logout/", nil, "", session)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
	cleared := cookieNamed(rec, auth.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestEmployeeListing(t *testing.T) {
	env := newTestEnv(t, false)
	env.user("erin", profile.RoleEmployee)
	env.user("mo", profile.RoleManager)
	env.user("root", profile.RoleAdmin)
	env.user("hana", profile.RoleHead)

	rec := env.do(http.MethodGet, "/", nil, "", env.login("erin"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.NotContains(t, body, "root")
	head, manager, employee := strings.Index(body, "<td>hana"), strings.Index(body, "<td>mo"), strings.Index(body, "<td>erin")
	require.True(t, head >= 0 && manager >= 0 && employee >= 0)
	assert.Less(t, head, manager)
	assert.Less(t, manager, employee)
}

func TestUpdateOwnProgress_Clamps(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.user("erin", profile.RoleEmployee)
	session := env.login("erin")

	rec := env.postForm("/profile/", url.Values{"progress": {"150"}}, session)
	assert.Equal(t, "/profile/", rec.Header().Get("Location"))

	page := env.follow(rec, session)
	assert.Contains(t, page.Body.String(), app.MsgProgressUpdated)

	actor, err := env.svc.ResolveActor(context.Background(), p.UserID)
	require.NoError(t, err)
	assert.Equal(t, 100, actor.Profile.Progress)

	env.postForm("/profile/", url.Values{"progress": {"ten"}}, session)
	actor, err = env.svc.ResolveActor(context.Background(), p.UserID)
	require.NoError(t, err)
	assert.Equal(t, 100, actor.Profile.Progress)
}

func TestAssign(t *testing.T) {
	env := newTestEnv(t, false)
	e := env.user("erin", profile.RoleEmployee)
	h := env.user("hana", profile.RoleHead)
	env.user("mo", profile.RoleManager)

	t.Run("employee is turned away", func(t *testing.T) {
		session := env.login("erin")
		rec := env.do(http.MethodGet, "/assign/", nil, "", session)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Contains(t, env.follow(rec, session).Body.String(), app.MsgPermissionDenied)
	})

	t.Run("manager sees no head in the form", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/assign/", nil, "", env.login("mo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "erin")
		assert.NotContains(t, rec.Body.String(), "hana")
	})

	t.Run("manager targeting a head rejects the whole request", func(t *testing.T) {
		session := env.login("mo")
		rec := env.postForm("/assign/", url.Values{
			"title": {"Audit"}, "assigned_to": {id(e.ID), id(h.ID)},
		}, session)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Contains(t, env.follow(rec, session).Body.String(), app.MsgPermissionDenied)

		view, err := env.svc.MyProfile(context.Background(), app.Actor{Profile: *e})
		require.NoError(t, err)
		assert.Empty(t, view.Tasks)
	})

	t.Run("missing title goes back to the form", func(t *testing.T) {
		session := env.login("hana")
		rec := env.postForm("/assign/", url.Values{"assigned_to": {id(e.ID)}}, session)
		assert.Equal(t, "/assign/", rec.Header().Get("Location"))
		assert.Contains(t, env.follow(rec, session).Body.String(), app.MsgTitleAndAssigneeRequired)
	})

	t.Run("head assigns with an attachment", func(t *testing.T) {
		session := env.login("hana")

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("title", "Read the brief"))
		require.NoError(t, w.WriteField("assigned_to", id(e.ID)))
		require.NoError(t, w.WriteField("assigned_to", "not-a-number"))
		require.NoError(t, w.WriteField("due_date", "2026-12-01"))
		part, err := w.CreateFormFile("attachment", "brief.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		rec := env.do(http.MethodPost, "/assign/", &buf, w.FormDataContentType(), session)
		assert.Equal(t, "/assign/", rec.Header().Get("Location"))
		assert.Contains(t, env.follow(rec, session).Body.String(), app.TasksAssignedMessage(1))
		require.Len(t, env.files.keys, 1)

		view, err := env.svc.MyProfile(context.Background(), app.Actor{Profile: *e})
		require.NoError(t, err)
		require.Len(t, view.Tasks, 1)
		assert.Equal(t, "2026-12-01", view.Tasks[0].DueDateDisplay())

		rec = env.do(http.MethodGet, "/task/"+id(view.Tasks[0].ID)+"/attachment/", nil, "", env.login("erin"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), env.files.keys[0])
	})
}

func TestReportTask(t *testing.T) {
	env := newTestEnv(t, false)
	e := env.user("erin", profile.RoleEmployee)
	env.user("eli", profile.RoleEmployee)
	h := env.user("hana", profile.RoleHead)

	_, err := env.svc.AssignTasks(context.Background(), app.Actor{Profile: *h}, app.AssignRequest{
		Title: "Ship it", AssigneeIDs: []string{id(e.ID)},
	})
	require.NoError(t, err)
	view, err := env.svc.MyProfile(context.Background(), app.Actor{Profile: *e})
	require.NoError(t, err)
	target := "/task/" + id(view.Tasks[0].ID) + "/report/"

	owner := env.login("erin")
	rec := env.do(http.MethodGet, target, nil, "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ship it")

	rec = env.postForm(target, url.Values{"status": {"done"}, "progress": {"300"}, "report": {"shipped"}}, owner)
	assert.Equal(t, "/profile/", rec.Header().Get("Location"))
	assert.Contains(t, env.follow(rec, owner).Body.String(), app.MsgTaskUpdated)

	got, err := env.svc.TaskForReport(context.Background(), app.Actor{Profile: *e}, view.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "done", string(got.Status))
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "shipped", got.Review)

	rec = env.postForm(target, url.Values{"status": {"archived"}}, owner)
	assert.Equal(t, target, rec.Header().Get("Location"))

	for _, who := range []string{"eli", "hana"} {
		session := env.login(who)
		rec = env.postForm(target, url.Values{"status": {"pending"}}, session)
		assert.Equal(t, "/", rec.Header().Get("Location"), who)
		assert.Contains(t, env.follow(rec, session).Body.String(), app.MsgReportOwnTasksOnly, who)
	}

	rec = env.do(http.MethodGet, "/task/999999/report/", nil, "", owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/task/abc/report/", nil, "", owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv(t, false)
	e := env.user("erin", profile.RoleEmployee)
	h := env.user("hana", profile.RoleHead)
	env.user("mo", profile.RoleManager)

	target := "/profile/" + id(e.UserID) + "/edit/"

	manager := env.login("mo")
	rec := env.do(http.MethodGet, target, nil, "", manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edit erin")

	rec = env.postForm(target, url.Values{"progress": {"-20"}}, manager)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Contains(t, env.follow(rec, manager).Body.String(), app.MsgProfileUpdated)

	rec = env.postForm("/profile/"+id(h.UserID)+"/edit/", url.Values{"progress": {"5"}}, manager)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Contains(t, env.follow(rec, manager).Body.String(), app.MsgPermissionDenied)

	rec = env.do(http.MethodGet, "/profile/424242/edit/", nil, "", manager)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksJSON(t *testing.T) {
	env := newTestEnv(t, false)
	e := env.user("erin", profile.RoleEmployee)
	env.user("eli", profile.RoleEmployee)
	h := env.user("hana", profile.RoleHead)
	env.user("root", profile.RoleAdmin)

	_, err := env.svc.AssignTasks(context.Background(), app.Actor{Profile: *h}, app.AssignRequest{
		Title: "Ship it", AssigneeIDs: []string{id(e.ID)},
	})
	require.NoError(t, err)
	target := "/tasks/" + id(e.ID) + "/"

	rec := env.do(http.MethodGet, target, nil, "", env.login("eli"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, rec.Body.String())

	for _, who := range []string{"erin", "hana", "root"} {
		rec = env.do(http.MethodGet, target, nil, "", env.login(who))
		require.Equal(t, http.StatusOK, rec.Code, who)

		var body struct {
			Tasks []app.TaskSummary `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Tasks, 1)
		assert.Equal(t, "Ship it", body.Tasks[0].Title)
		assert.Equal(t, "pending", body.Tasks[0].Status)
		assert.Equal(t, "hana", body.Tasks[0].AssignedBy)
	}

	rec = env.do(http.MethodGet, "/tasks/999999/", nil, "", env.login("hana"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, false)
	env.user("root", profile.RoleAdmin)
	env.user("hana", profile.RoleHead)

	rec := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/metrics/requests", nil, "", env.login("hana"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/metrics/requests", nil, "", env.login("root"))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Positive(t, snap.TotalRequests)
}

func TestCSRFProtection(t *testing.T) {
	env := newTestEnv(t, true)
	env.user("erin", profile.RoleEmployee)
	session := env.login("erin")

	rec := env.postForm("/profile/", url.Values{"progress": {"10"}}, session)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	page := env.do(http.MethodGet, "/profile/", nil, "", session)
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	marker := `name="csrf_token" value="`
	start := strings.Index(body, marker)
	require.GreaterOrEqual(t, start, 0)
	token := body[start+len(marker):]
	token = token[:strings.Index(token, `"`)]

	rec = env.postForm("/profile/", url.Values{"progress": {"10"}, "csrf_token": {token}}, session)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/nope/", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}
