package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docvault/internal/logger"
	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/services"
	helpers "docvault/internal/utils/helpres"
	"docvault/internal/validator"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

type authResponse struct {
	User  *models.UserProfileResponse `json:"user"`
	Token string                      `json:"token"`
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 201 {object} helpers.Response
// @Failure 400 {object} helpers.Response "Ошибка валидации"
// @Failure 409 {object} helpers.Response "Email уже занят"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Register", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if errs := validator.ValidateRegister(req.Email, req.Password, req.Name); len(errs) > 0 {
		logger.WithCtx(r.Context()).Warn("Ошибка валидации в Register", zap.Int("violations", len(errs)))
		helpers.ValidationError(w, errs)
		return
	}

	user, token, err := h.authService.RegisterUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			helpers.Error(w, http.StatusConflict, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка регистрации пользователя", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Не удалось зарегистрировать пользователя")
		return
	}

	helpers.JSON(w, http.StatusCreated, "Пользователь успешно зарегистрирован", authResponse{
		User:  user.Profile(),
		Token: token,
	})
}

// Login godoc
// @Summary Авторизация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} helpers.Response "Неверный email или пароль"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if errs := validator.ValidateLogin(req.Email, req.Password); len(errs) > 0 {
		helpers.ValidationError(w, errs)
		return
	}

	user, token, err := h.authService.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		// Сообщение одинаковое для неизвестного email и неверного пароля.
		helpers.Error(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
		return
	}

	helpers.JSON(w, http.StatusOK, "Вход выполнен", authResponse{
		User:  user.Profile(),
		Token: token,
	})
}

// Me godoc
// @Summary Получить данные профиля
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.Response
// @Failure 404 {object} helpers.Response "Пользователь не найден"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, "Пользователь не найден")
			return
		}
		helpers.Error(w, http.StatusInternalServerError, "Не удалось получить профиль")
		return
	}

	helpers.JSON(w, http.StatusOK, "Профиль пользователя", user.Profile())
}

// UpdateProfile godoc
// @Summary Обновить имя в профиле
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body updateProfileRequest true "Новое имя"
// @Success 200 {object} helpers.Response
// @Failure 400 {object} helpers.Response "Ошибка валидации"
// @Router /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в UpdateProfile", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if errs := validator.ValidateProfileUpdate(req.Name); len(errs) > 0 {
		helpers.ValidationError(w, errs)
		return
	}

	user, err := h.authService.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, "Пользователь не найден")
			return
		}
		helpers.Error(w, http.StatusInternalServerError, "Не удалось обновить профиль")
		return
	}

	helpers.JSON(w, http.StatusOK, "Профиль обновлён", user.Profile())
}
