package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/services"
	"docvault/internal/utils"

	"github.com/stretchr/testify/require"
)

// Хранилище пользователей в памяти для тестов хендлеров
type stubUserRepo struct {
	byEmail map[string]*models.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*models.User), nextID: 1}
}

func (r *stubUserRepo) CreateUser(_ context.Context, user *models.User) error {
	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byEmail[key] = user
	return nil
}

func (r *stubUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetUserByID(_ context.Context, id int) (*models.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) UpdateName(_ context.Context, id int, name string) (*models.User, error) {
	user, err := r.GetUserByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.UpdatedAt = time.Now()
	return user, nil
}

const testSecret = "test-secret"

func newAuthHandler() *AuthHandler {
	svc := services.NewAuthService(newStubUserRepo(), testSecret, time.Hour)
	return NewAuthHandler(svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister_Success(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register",
		`{"email":"user@example.com","password":"secret1","name":"Иван"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// Выданный токен принимается нашим же парсером
	claims, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", claims.Email)

	user := data["user"].(map[string]interface{})
	require.Equal(t, "Иван", user["name"])
	require.Equal(t, "user", user["role"])
	require.NotContains(t, user, "password_hash")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register",
		`{"email":"user@example.com","password":"secret1","name":"Иван"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Регистр букв в email не спасает от конфликта
	rec = postJSON(t, h.Register, "/auth/register",
		`{"email":"USER@example.com","password":"secret2","name":"Пётр"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestRegister_InvalidJSON(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register", `{не json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_ValidationAggregate(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := decodeBody(t, rec)["details"].(map[string]interface{})
	byField := details["errorsByField"].(map[string]interface{})
	require.Contains(t, byField, "email")
	require.Contains(t, byField, "password")
	require.Contains(t, byField, "name")
}

func TestLogin_IdenticalResponseForUnknownEmailAndWrongPassword(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register",
		`{"email":"user@example.com","password":"secret1","name":"Иван"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown := postJSON(t, h.Login, "/auth/login",
		`{"email":"nobody@example.com","password":"secret1"}`)
	wrongPass := postJSON(t, h.Login, "/auth/login",
		`{"email":"user@example.com","password":"wrong-pass"}`)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)

	// Тело ответа не должно выдавать, существует ли адрес
	require.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestLogin_Success(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/auth/register",
		`{"email":"user@example.com","password":"secret1","name":"Иван"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/auth/login",
		`{"email":"user@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	require.NotEmpty(t, data["token"])
}
