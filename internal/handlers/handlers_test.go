package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubOracle struct{ text string }

func (s stubOracle) Generate(context.Context, string) (string, error) { return s.text, nil }

func newTestApp(t *testing.T, oracle *stubOracle) *fiber.App {
	t.Helper()
	db := testutil.DB(t)

	tokens := services.NewTokenService(testSecret)
	prefs := services.NewPreferenceService(db)
	var plans *services.MealPlanService
	if oracle != nil {
		plans = services.NewMealPlanService(db, prefs, oracle, time.Second)
	} else {
		plans = services.NewMealPlanService(db, prefs, nil, time.Second)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Setup(app, tokens,
		handlers.NewHealthHandler(db, oracle != nil),
		handlers.NewAuthHandler(services.NewAuthService(db, tokens)),
		handlers.NewPreferenceHandler(prefs),
		handlers.NewMealPlanHandler(plans),
	)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/register", "", `{"username":"`+username+`","password":"secret"}`)
	require.Equal(t, http.StatusCreated, status, body)
	return body["token"].(string)
}

func TestRegisterLoginMe(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodPost, "/register", "", `{"username":"aina","password":"secret"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "aina", body["username"])

	status, body = do(t, app, http.MethodPost, "/register", "", `{"username":"aina","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username already exists", body["error"])

	status, body = do(t, app, http.MethodPost, "/register", "", `{"username":"bob","password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password must be at least 4 characters", body["error"])

	status, body = do(t, app, http.MethodPost, "/login", "", `{"username":"aina","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid username or password", body["error"])

	status, body = do(t, app, http.MethodPost, "/login", "", `{"username":"aina","password":"secret"}`)
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)

	status, body = do(t, app, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "aina", body["username"])
	assert.NotZero(t, body["id"])
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t, nil)

	claims := services.TokenClaims{
		Username: "aina",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Authorization header required"},
		{"wrong scheme", "Basic abc", "Authorization header must be Bearer token"},
		{"three parts", "Bearer a b", "Authorization header must be Bearer token"},
		{"expired", "Bearer " + expiredToken, "Token expired"},
		{"garbage", "Bearer not.a.token", "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "aina")

	status, body := do(t, app, http.MethodGet, "/preferences", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["preferences"])
	assert.EqualValues(t, 500, body["custom_preferences_max_length"])

	status, body = do(t, app, http.MethodPut, "/preferences", token, `{"dietary_preferences":"halal","meal_types":["lunch","dinner"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "preferences saved", body["message"])

	status, _ = do(t, app, http.MethodPut, "/preferences", token, `{"budget":50}`)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodPut, "/preferences", token, `{"custom_preferences":"`+strings.Repeat("x", 501)+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Custom preferences cannot exceed 500 characters. Current length: 501", body["error"])

	status, body = do(t, app, http.MethodGet, "/preferences", token, "")
	require.Equal(t, http.StatusOK, status)
	prefs := body["preferences"].(map[string]any)
	assert.Equal(t, "halal", prefs["dietary_preferences"])
	assert.EqualValues(t, 50, prefs["budget"])
	assert.EqualValues(t, 3, prefs["days"])
	assert.Equal(t, "lunch,dinner", prefs["meal_types"])
	assert.Nil(t, prefs["custom_preferences"])
	assert.Contains(t, prefs["updated_at"], "+08:00")
}

func TestMealPlanLifecycle(t *testing.T) {
	app := newTestApp(t, &stubOracle{text: `Here you go: {"title":"Week","days":[],"grocery_list":[{"item":"rice","qty":"1kg"}]}`})
	token := register(t, app, "aina")
	other := register(t, app, "mallory")

	status, body := do(t, app, http.MethodPost, "/generate_mealplan", token, `{"days":"5"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	planID := body["plan_id"].(float64)
	parsed := body["parsed_json"].(map[string]any)
	assert.Equal(t, "Week", parsed["title"])

	// Generation also works without a body.
	status, _ = do(t, app, http.MethodPost, "/generate_mealplan", token, "")
	require.Equal(t, http.StatusCreated, status)

	status, body = do(t, app, http.MethodGet, "/mealplans?page=1&per_page=1", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["per_page"])
	assert.Len(t, body["plans"], 1)

	status, body = do(t, app, http.MethodGet, "/mealplans?page=abc&per_page=-4", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 10, body["per_page"])

	path := "/mealplans/" + jsonNumber(planID)
	status, body = do(t, app, http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Week", body["title"])
	assert.Equal(t, "Week", body["plan"].(map[string]any)["title"])
	assert.Len(t, body["grocery_list"], 1)

	status, body = do(t, app, http.MethodGet, path, other, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "plan not found", body["error"])

	status, _ = do(t, app, http.MethodDelete, path, other, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "meal plan deleted successfully", body["message"])

	status, _ = do(t, app, http.MethodGet, path, token, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerateWithoutOracle(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "aina")

	status, body := do(t, app, http.MethodPost, "/generate_mealplan", token, `{}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Nil(t, body["parsed_json"])
	assert.Equal(t, services.OracleNotConfiguredText, body["ai_text_snippet"])
}

func TestHomeAndHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Nutrietary - AI Dietary Planner (backend)", body["service"])
	assert.Contains(t, body["endpoints"], "GET /health")

	status, body = do(t, app, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["db"])
	assert.Equal(t, false, body["ai_configured"])
	assert.True(t, strings.HasSuffix(body["timestamp"].(string), "+08:00"))
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(int64(f))
	return string(b)
}
