package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/pkg/hash"
	"github.com/taskhive/taskhive/pkg/tokens"
	"github.com/taskhive/taskhive/services/auth/internal/models"
	"github.com/taskhive/taskhive/services/auth/internal/repo"
	"github.com/taskhive/taskhive/services/auth/internal/service"
	"github.com/taskhive/taskhive/services/auth/internal/tokenstore"
)

type serverEnv struct {
	e      *echo.Echo
	signer *tokens.Signer
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	signer, err := tokens.NewSigner([]byte("test-jwt-secret"), "taskhive-auth", "taskhive-api")
	require.NoError(t, err)

	svc := &service.TokenService{
		Users:      &repo.UserRepo{DB: db},
		Store:      tokenstore.New(rdb),
		Signer:     signer,
		RefreshTTL: 24 * time.Hour,
	}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:     &AuthHTTP{Svc: svc},
		ValidateHandler: &ValidateHTTP{Signer: signer},
	})

	return &serverEnv{e: e, signer: signer, db: db, mr: mr}
}

func (env *serverEnv) seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Username: username, PasswordHash: pwHash, Email: username + "@example.com", Role: models.RoleUser}
	require.NoError(t, env.db.Create(&u).Error)
	return &u
}

func (env *serverEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

type pairBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_exp"`
	RefreshExp   int64  `json:"refresh_exp"`
}

func decodePair(t *testing.T, rec *httptest.ResponseRecorder) pairBody {
	t.Helper()

	var body pairBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginEndpoint_Success(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)
	env.seedUser(t, "alice", "secret")

	rec := env.post(t, "/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodePair(t, rec)
	require.NotEmpty(t, body.AccessToken)
	require.NotEmpty(t, body.RefreshToken)
	assert.NotEqual(t, body.AccessToken, body.RefreshToken)
	assert.Greater(t, body.AccessExp, time.Now().Unix())
	assert.Greater(t, body.RefreshExp, body.AccessExp)
}

func TestLoginEndpoint_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)
	env.seedUser(t, "alice", "secret")

	wrongPw := env.post(t, "/login", `{"username":"alice","password":"nope"}`)
	unknown := env.post(t, "/login", `{"username":"mallory","password":"secret"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	// Identical bodies, no username enumeration through the response.
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestLoginEndpoint_BadBody(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)

	rec := env.post(t, "/login", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint_RotationScenario(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)
	env.seedUser(t, "alice", "secret")

	login := env.post(t, "/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, login.Code)
	first := decodePair(t, login)

	refresh := env.post(t, "/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, refresh.Code)
	second := decodePair(t, refresh)
	require.NotEmpty(t, second.RefreshToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Strict rotation: the consumed token is rejected on reuse.
	reuse := env.post(t, "/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, reuse.Code)
}

func TestRefreshEndpoint_UnknownToken(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)

	rec := env.post(t, "/refresh", `{"refresh_token":"never-issued"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)
	env.seedUser(t, "alice", "secret")

	login := env.post(t, "/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, login.Code)
	pair := decodePair(t, login)

	logout := env.post(t, "/logout", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, logout.Code)

	refresh := env.post(t, "/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, refresh.Code)
}

func TestValidateEndpoint_ValidToken(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)
	env.seedUser(t, "alice", "secret")

	login := env.post(t, "/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, login.Code)
	pair := decodePair(t, login)

	rec := env.post(t, "/validate", `{"token":"`+pair.AccessToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.IsValid)

	claimMap := map[string]string{}
	for _, cl := range resp.Claims {
		claimMap[cl.Type] = cl.Value
	}
	assert.NotEmpty(t, claimMap["sub"])
	assert.Equal(t, "alice", claimMap["name"])
	assert.Equal(t, models.RoleUser, claimMap["role"])
}

func TestValidateEndpoint_InvalidTokenStays200(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "garbage token", body: `{"token":"garbage"}`},
		{name: "empty token", body: `{"token":""}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := env.post(t, "/validate", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp validateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.IsValid)
			assert.Empty(t, resp.Claims)
		})
	}
}

func TestValidateEndpoint_ForeignKeyRejected(t *testing.T) {
	t.Parallel()

	env := newServerEnv(t)

	foreign, err := tokens.NewSigner([]byte("other-secret"), "taskhive-auth", "taskhive-api")
	require.NoError(t, err)
	token, err := foreign.Issue(1, "alice", "alice@example.com", "user", tokens.AccessTokenTTL)
	require.NoError(t, err)

	rec := env.post(t, "/validate", `{"token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsValid)
}
