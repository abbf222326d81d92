package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pmtool/pmctl/internal/api"
	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
	"github.com/pmtool/pmctl/internal/infrastructure/storage"
	"github.com/pmtool/pmctl/internal/infrastructure/storage/memkv"
)

// capture records the requests an echo server received.
type capture struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (c *capture) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c.mu.Lock()
		c.reqs = append(c.reqs, ctx.Request().Clone(context.Background()))
		c.mu.Unlock()
		return next(ctx)
	}
}

func (c *capture) last(t *testing.T) *http.Request {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.reqs)
	return c.reqs[len(c.reqs)-1]
}

func newEchoServer(t *testing.T, register func(e *echo.Echo)) (*httptest.Server, *capture) {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	rec := &capture{}
	e.Use(rec.middleware)
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, rec
}

func staticToken(tok *string) ports.TokenSource {
	return ports.TokenSourceFunc(func() string { return *tok })
}

func TestClient_BearerFollowsSession(t *testing.T) {
	srv, rec := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/api/users", func(c echo.Context) error { return c.JSON(http.StatusOK, []domain.User{}) })
	})
	token := ""
	c, err := New(srv.URL, staticToken(&token))
	require.NoError(t, err)

	_, err = c.Users.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, rec.last(t).Header.Get("Authorization"))

	token = "tok-123"
	_, err = c.Users.List(context.Background())
	require.NoError(t, err)
	req := rec.last(t)
	require.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.NotEmpty(t, req.Header.Get(HeaderRequestID))
}

func TestClient_LoginAndSignupCarryBearerWhenPresent(t *testing.T) {
	srv, rec := newEchoServer(t, func(e *echo.Echo) {
		e.POST("/api/auth/login", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]any{
				"access_token": "new",
				"user": map[string]any{
					"_id": "u1", "email": "a@b.c", "role": "Admin", "extra": true,
					"created_at": "2025-09-20 10:00:00",
				},
			})
		})
		e.POST("/api/auth/signup", func(c echo.Context) error {
			return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully"})
		})
	})
	token := "stale"
	c, err := New(srv.URL, staticToken(&token))
	require.NoError(t, err)

	res, err := c.Auth.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "p"})
	require.NoError(t, err)
	require.Equal(t, "new", res.Token)
	require.Equal(t, domain.RoleAdmin, res.Identity.Role)
	require.Equal(t, time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC), res.Identity.CreatedAt.UTC())
	require.Equal(t, "Bearer stale", rec.last(t).Header.Get("Authorization"))

	token = ""
	ack, err := c.Auth.Signup(context.Background(), domain.SignupRequest{Username: "a", Email: "a@b.c", Password: "p", Role: domain.RoleTester})
	require.NoError(t, err)
	require.Equal(t, "User created successfully", ack.Message)
	require.Empty(t, rec.last(t).Header.Get("Authorization"))
}

func TestClient_UnrecognisedTimestampsDoNotFailDecode(t *testing.T) {
	srv, _ := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/api/tasks", func(c echo.Context) error {
			return c.JSONBlob(http.StatusOK, []byte(`[
				{"_id":"t1","title":"a","status":"To Do","deadline":{"$date":1758326400000}},
				{"_id":"t2","title":"b","status":"Done","deadline":"2025-09-20","created_at":"last week"}
			]`))
		})
	})
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	tasks, err := c.Tasks.List(context.Background(), domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.True(t, tasks[0].Deadline.IsZero())
	require.Equal(t, "2025-09-20", tasks[1].Deadline.DateString())
}

func TestClient_UnauthorizedTearsDownOncePerResponse(t *testing.T) {
	f := api.NewFixture()
	defer f.Close()

	ctx := context.Background()
	st := storage.NewSessionStorage(memkv.New())
	require.NoError(t, st.Save(ctx, domain.PersistedSession{Token: "x", Identity: f.Identity(domain.RoleTester)}))

	var navigations []*domain.APIError
	nav := NavigatorFunc(func(_ context.Context, cause *domain.APIError) { navigations = append(navigations, cause) })

	token := f.Token(domain.RoleTester, -time.Minute)
	c, err := New(f.URL(), staticToken(&token), WithUnauthorizedHandler(NewTeardownPolicy(st, nav, zerolog.Nop())))
	require.NoError(t, err)

	_, err = c.Reports.Dashboard(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrAuthorizationExpired)
	require.Equal(t, "Signature expired. Please log in again.", domain.UserMessage(err))
	require.True(t, IsUnauthorized(err))

	require.Len(t, navigations, 1)
	_, loadErr := st.Load(ctx)
	require.ErrorIs(t, loadErr, domain.ErrNoStoredSession)

	_, err = c.Projects.List(ctx)
	require.ErrorIs(t, err, domain.ErrAuthorizationExpired)
	require.Len(t, navigations, 2)
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	f := api.NewFixture()
	defer f.Close()

	recorder := &Recorder{}
	c, err := New(f.URL(), nil, WithUnauthorizedHandler(recorder))
	require.NoError(t, err)

	_, err = c.Auth.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	require.Equal(t, "Invalid credentials", domain.UserMessage(err))
	require.Equal(t, []string{"/api/auth/login"}, recorder.Routes())
	require.Equal(t, domain.KindAuthenticationFailed, recorder.Causes()[0].Kind)
}

func TestClient_TaskFilterOmitsEmptyKeys(t *testing.T) {
	srv, rec := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/api/tasks", func(c echo.Context) error { return c.JSON(http.StatusOK, []domain.Task{}) })
	})
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Tasks.List(context.Background(), domain.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, rec.last(t).URL.RawQuery)

	_, err = c.Tasks.List(context.Background(), domain.TaskFilter{Status: domain.TaskInProgress, AssignedTo: "u1"})
	require.NoError(t, err)
	q := rec.last(t).URL.Query()
	require.Equal(t, "In Progress", q.Get("status"))
	require.Equal(t, "u1", q.Get("assigned_to"))
	require.False(t, q.Has("project_id"))
	require.False(t, q.Has("priority"))
}

func TestClient_DashboardOptionalFields(t *testing.T) {
	srv, _ := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/api/reports/dashboard", func(c echo.Context) error {
			return c.JSONBlob(http.StatusOK, []byte(`{"tasks_by_status": {"Done": 3, "In Progress": 2}}`))
		})
	})
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	d, err := c.Reports.Dashboard(context.Background())
	require.NoError(t, err)
	require.Nil(t, d.RecentOverdueTasks)
	require.Equal(t, 3, d.TasksByStatus[domain.TaskDone])
	require.Equal(t, 2, d.TasksByStatus[domain.TaskInProgress])
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv, _ := newEchoServer(t, func(e *echo.Echo) {
		e.POST("/api/projects", func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		})
		e.POST("/api/ai/generate-user-stories", func(c echo.Context) error {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error":   "Failed to generate user stories",
				"details": "model timeout",
			})
		})
		e.DELETE("/api/tasks/:id", func(c echo.Context) error { return c.String(http.StatusBadGateway, "<html>") })
		e.GET("/api/users", func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
		})
	})
	recorder := &Recorder{}
	c, err := New(srv.URL, nil, WithUnauthorizedHandler(recorder))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Projects.Create(ctx, domain.ProjectInput{Name: "x"})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	require.Equal(t, "Missing required fields", domain.UserMessage(err))

	_, err = c.Stories.Generate(ctx, domain.GenerateStoriesRequest{ProjectDescription: "shop"})
	require.ErrorIs(t, err, domain.ErrRequestFailed)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "model timeout", apiErr.Details)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)

	_, err = c.Tasks.Delete(ctx, "t1")
	require.ErrorIs(t, err, domain.ErrRequestFailed)
	require.Equal(t, domain.GenericFailureMessage, domain.UserMessage(err))
	require.Empty(t, recorder.Routes())

	_, err = c.Users.List(ctx)
	require.ErrorIs(t, err, domain.ErrAuthorizationExpired)
	require.Equal(t, "Token has expired", domain.UserMessage(err))
	require.Equal(t, []string{"/api/users"}, recorder.Routes())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	recorder := &Recorder{}
	c, err := New(url, nil, WithUnauthorizedHandler(recorder), WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = c.Users.List(context.Background())
	require.ErrorIs(t, err, domain.ErrTransportFailure)
	require.Equal(t, domain.GenericFailureMessage, domain.UserMessage(err))
	require.Empty(t, recorder.Routes())
}

func TestClient_PathEscaping(t *testing.T) {
	srv, rec := newEchoServer(t, func(e *echo.Echo) {
		e.DELETE("/api/projects/:id/team/:userId", func(c echo.Context) error {
			return c.JSON(http.StatusOK, domain.Ack{Message: "Team member removed"})
		})
	})
	c, err := New(srv.URL+"/", nil)
	require.NoError(t, err)

	ack, err := c.Projects.RemoveTeamMember(context.Background(), "p 1", "u/2")
	require.NoError(t, err)
	require.Equal(t, "Team member removed", ack.Message)
	require.Equal(t, "/api/projects/p%201/team/u%2F2", rec.last(t).URL.EscapedPath())
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("localhost:5000", nil)
	require.Error(t, err)
	_, err = New("://", nil)
	require.Error(t, err)
}
