package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-reservations/database"
	"github.com/yeremiapane/restaurant-reservations/models"
)

func registerStaff(t *testing.T, r http.Handler, email, role string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"name":     "Front Desk",
		"email":    email,
		"password": "supersecret",
		"role":     role,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginAndProfile(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w := registerStaff(t, r, "Host@Example.com", models.RoleHost)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"email":    "host@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token    string `json:"token"`
		UserRole string `json:"user_role"`
	}
	decodeData(t, resp, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleHost, login.UserRole)

	req := httptest.NewRequest(http.MethodGet, "/staff/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	var user models.User
	decodeData(t, profile, &user)
	assert.Equal(t, "host@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.NotContains(t, rec.Body.String(), "supersecret")
}

func TestRegisterRejections(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	require.Equal(t, http.StatusCreated, registerStaff(t, r, "host@example.com", models.RoleHost).Code)

	w := registerStaff(t, r, "host@example.com", models.RoleHost)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")

	w = registerStaff(t, r, "chef@example.com", "chef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicRegisterCannotChooseRole(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	for _, role := range []string{models.RoleManager, models.RoleAdmin} {
		w := registerStaff(t, r, role+"@example.com", role)
		assert.Equal(t, http.StatusForbidden, w.Code, role)
		assert.Contains(t, w.Body.String(), "only an admin can create "+role+" accounts")
	}

	w := registerStaff(t, r, "someone@example.com", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.Where("email = ?", "someone@example.com").First(&user).Error)
	assert.Equal(t, models.RoleHost, user.Role)

	var admins int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	assert.Zero(t, admins)
}

func TestAdminCreatesStaffAccounts(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	require.NoError(t, database.SeedAdmin(db, "Boss@Example.com", "supersecret"))
	require.NoError(t, database.SeedAdmin(db, "boss@example.com", "another-password"))

	adminToken := login(t, r, "boss@example.com", "supersecret")
	body := map[string]string{
		"name":     "Floor Manager",
		"email":    "manager@example.com",
		"password": "supersecret",
		"role":     models.RoleManager,
	}

	w := withToken(t, r, http.MethodPost, "/staff/users", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var manager models.User
	require.NoError(t, db.Where("email = ?", "manager@example.com").First(&manager).Error)
	assert.Equal(t, models.RoleManager, manager.Role)

	require.Equal(t, http.StatusCreated, registerStaff(t, r, "host@example.com", "").Code)
	hostToken := login(t, r, "host@example.com", "supersecret")
	body["email"] = "sneaky@example.com"
	body["role"] = models.RoleAdmin
	w = withToken(t, r, http.MethodPost, "/staff/users", hostToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = withToken(t, r, http.MethodPost, "/staff/users", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	w := withToken(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func withToken(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	require.Equal(t, http.StatusCreated, registerStaff(t, r, "host@example.com", models.RoleHost).Code)

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"email":    "host@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", resp.Error)

	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", resp.Error)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/staff/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header missing", resp.Error)

	req := httptest.NewRequest(http.MethodGet, "/staff/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/ws/floor", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
