package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/repository"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

type testApp struct {
	handler  http.Handler
	users    *service.UserService
	sessions *service.SessionService
}

func newTestApp(t *testing.T, production bool) *testApp {
	t.Helper()

	store := repository.NewMemoryStore()
	sessions, err := service.NewSessionService("router-test-secret", 365*24*time.Hour)
	require.NoError(t, err)

	app := &testApp{
		users:    service.NewUserService(store.Users()),
		sessions: sessions,
	}
	app.handler = New(Deps{
		Users:       app.users,
		Meals:       service.NewMealService(store.Meals()),
		Sessions:    sessions,
		Production:  production,
		CORSOrigins: []string{"http://localhost:5173"},
	})
	return app
}

// login stores a user, optionally promotes it, and returns its session cookie.
func (a *testApp) login(t *testing.T, email string, admin bool) *http.Cookie {
	t.Helper()
	ctx := context.Background()

	u, err := a.users.Upsert(ctx, model.User{Email: email, FullName: "Test User"})
	require.NoError(t, err)
	if admin {
		_, err = a.users.SetRole(ctx, u.ID.Hex(), model.RoleAdmin)
		require.NoError(t, err)
	}

	token, _, err := a.sessions.Issue(model.SessionRequest{Email: email})
	require.NoError(t, err)
	return &http.Cookie{Name: "token", Value: token}
}

func (a *testApp) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meal Mafia server is running", rec.Body.String())
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	app := newTestApp(t, false)
	id := primitive.NewObjectID().Hex()

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/users", ""},
		{http.MethodPatch, "/user/" + id, `{"role":"admin"}`},
		{http.MethodGet, "/user/role/a@x.com", ""},
		{http.MethodPost, "/meals", `{"price":10}`},
		{http.MethodDelete, "/meal/" + id, ""},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := app.do(t, rt.method, rt.path, rt.body, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized access"}`, rec.Body.String())
		})
	}

	// Nothing was written by the rejected POST.
	rec := app.do(t, http.MethodGet, "/meals", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	app := newTestApp(t, false)
	cookie := app.login(t, "guest@x.com", false)

	rec := app.do(t, http.MethodPost, "/meals", `{"price":10}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden access"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/users", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenForUnknownUserIsNotAdmin(t *testing.T) {
	app := newTestApp(t, false)
	token, _, err := app.sessions.Issue(model.SessionRequest{Email: "ghost@x.com"})
	require.NoError(t, err)

	rec := app.do(t, http.MethodGet, "/users", "", &http.Cookie{Name: "token", Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidCookieIsRejected(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodGet, "/user/role/a@x.com", "", &http.Cookie{Name: "token", Value: "not.a.jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpsertUserTwiceReturnsSameDocument(t *testing.T) {
	app := newTestApp(t, false)
	body := `{"email":"a@x.com","fullName":"A"}`

	first := app.do(t, http.MethodPut, "/user", body, nil)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := app.do(t, http.MethodPut, "/user", body, nil)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	assert.JSONEq(t, first.Body.String(), second.Body.String())

	doc := decode[map[string]any](t, first)
	assert.Equal(t, "a@x.com", doc["email"])
	assert.NotZero(t, doc["timestamp"])
	assert.NotEmpty(t, doc["_id"])

	admin := app.login(t, "boss@x.com", true)
	users := decode[[]map[string]any](t, app.do(t, http.MethodGet, "/users", "", admin))
	var count int
	for _, u := range users {
		if u["email"] == "a@x.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpsertUserValidation(t *testing.T) {
	app := newTestApp(t, false)

	tests := []struct {
		name, body, wantErr string
	}{
		{"missing email", `{"fullName":"A"}`, "validation error: email is required"},
		{"missing name", `{"email":"a@x.com"}`, "validation error: fullName is required"},
		{"not an object", `[1,2]`, "invalid request body"},
		{"empty body", ``, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPut, "/user", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantErr, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestUpsertUserCannotSelfPromote(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodPut, "/user", `{"email":"sneaky@x.com","fullName":"S","role":"admin"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, hasRole := decode[map[string]any](t, rec)["role"]
	assert.False(t, hasRole)
}

func TestRoleLookupAndPromotion(t *testing.T) {
	app := newTestApp(t, false)
	admin := app.login(t, "boss@x.com", true)
	guest := app.login(t, "guest@x.com", false)

	rec := app.do(t, http.MethodGet, "/user/role/guest@x.com", "", guest)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":""}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/user/role/boss@x.com", "", guest)
	assert.JSONEq(t, `{"role":"admin"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/user/role/ghost@x.com", "", guest)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	u, err := app.users.Upsert(context.Background(), model.User{Email: "guest@x.com", FullName: "ignored"})
	require.NoError(t, err)

	rec = app.do(t, http.MethodPatch, "/user/"+u.ID.Hex(), "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[model.UpdateResult](t, rec)
	assert.True(t, res.Acknowledged)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.EqualValues(t, 1, res.ModifiedCount)

	// The promoted user passes the admin check on the very next request.
	rec = app.do(t, http.MethodGet, "/users", "", guest)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPatch, "/user/not-an-id", `{"role":"admin"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPatch, "/user/"+u.ID.Hex(), `{"role":"owner"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMealLifecycle(t *testing.T) {
	app := newTestApp(t, false)
	admin := app.login(t, "boss@x.com", true)

	rec := app.do(t, http.MethodPost, "/meals", `{"title":"Kacchi","price":18.5,"ingredients":["rice","mutton"]}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	inserted := decode[model.InsertResult](t, rec)
	assert.True(t, inserted.Acknowledged)
	require.NotEmpty(t, inserted.InsertedID)

	rec = app.do(t, http.MethodGet, "/meals/"+inserted.InsertedID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meal := decode[map[string]any](t, rec)
	assert.Equal(t, "Kacchi", meal["title"])
	assert.Equal(t, 18.5, meal["price"])
	assert.Equal(t, inserted.InsertedID, meal["_id"])

	rec = app.do(t, http.MethodDelete, "/meal/"+inserted.InsertedID, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/meals/"+inserted.InsertedID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUnknownMealReturnsZeroCount(t *testing.T) {
	app := newTestApp(t, false)
	admin := app.login(t, "boss@x.com", true)

	rec := app.do(t, http.MethodDelete, "/meal/"+primitive.NewObjectID().Hex(), "", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, rec.Body.String())

	rec = app.do(t, http.MethodDelete, "/meal/xyz", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMealRejectsNonNumericPrice(t *testing.T) {
	app := newTestApp(t, false)
	admin := app.login(t, "boss@x.com", true)

	rec := app.do(t, http.MethodPost, "/meals", `{"price":"cheap"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation error: price must be a number", decode[map[string]string](t, rec)["error"])
}

func TestListMealsSorting(t *testing.T) {
	app := newTestApp(t, false)
	admin := app.login(t, "boss@x.com", true)

	for _, body := range []string{`{"price":12}`, `{"price":3}`, `{"price":25}`, `{"price":8}`} {
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/meals", body, admin).Code)
	}

	prices := func(path string) []float64 {
		rec := app.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []float64
		for _, m := range decode[[]map[string]any](t, rec) {
			out = append(out, m["price"].(float64))
		}
		return out
	}

	asc := prices("/meals?sort=asc")
	desc := prices("/meals?sort=desc")

	assert.Equal(t, []float64{3, 8, 12, 25}, asc)
	assert.Equal(t, []float64{25, 12, 8, 3}, desc)
	assert.Equal(t, desc, prices("/meals"), "default order is descending")
}

func TestGetMealInvalidID(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodGet, "/meals/123", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueSessionSetsCookie(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		wantSecure bool
		wantSite   http.SameSite
	}{
		{"development", false, false, http.SameSiteStrictMode},
		{"production", true, true, http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.production)

			rec := app.do(t, http.MethodPost, "/jwt", `{"email":"cook@x.com"}`, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true}`, rec.Body.String())

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, "token", c.Name)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, tt.wantSecure, c.Secure)
			assert.Equal(t, tt.wantSite, c.SameSite)
			assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), c.Expires, time.Minute)

			claims, err := app.sessions.Verify(c.Value)
			require.NoError(t, err)
			assert.Equal(t, "cook@x.com", claims.Email)
		})
	}
}

func TestIssueSessionRequiresEmail(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodPost, "/jwt", `{"name":"nobody"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t, false)

	rec := app.do(t, http.MethodPost, "/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionCookieAuthorizesRoleLookup(t *testing.T) {
	app := newTestApp(t, false)
	_, err := app.users.Upsert(context.Background(), model.User{Email: "cook@x.com", FullName: "Cook"})
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, "/jwt", `{"email":"cook@x.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]

	rec = app.do(t, http.MethodGet, "/user/role/cook@x.com", "", &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	assert.Equal(t, http.StatusOK, rec.Code)
}
