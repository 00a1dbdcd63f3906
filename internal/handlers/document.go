package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"docvault/internal/logger"
	"docvault/internal/middleware"
	"docvault/internal/repository"
	"docvault/internal/services"
	helpers "docvault/internal/utils/helpres"
	"docvault/internal/validator"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Порог оперативной памяти для разбора multipart-формы;
// всё сверх него net/http перекладывает во временные файлы.
const multipartMemory = 10 << 20

type DocumentHandler struct {
	service       services.DocumentServiceInterface
	maxUploadSize int64
}

func NewDocumentHandler(service services.DocumentServiceInterface, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
	}
}

// UploadDocument godoc
// @Summary Загрузка документа
// @Tags documents
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл документа"
// @Param title formData string true "Название (2-255 символов)"
// @Param description formData string false "Описание (до 1000 символов)"
// @Param is_public formData bool false "Публичный документ?"
// @Success 201 {object} helpers.Response
// @Failure 400 {object} helpers.Response "Нет файла или ошибка валидации"
// @Failure 500 {object} helpers.Response "Ошибка хранилища"
// @Router /api/upload [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)
	logger.WithCtx(r.Context()).Info("Запрос на загрузку документа", zap.Int("user_id", userID))

	// Слишком большое тело отклоняется по ходу чтения, без буферизации целиком.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка разбора формы при загрузке", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Не удалось разобрать форму: файл отсутствует или превышен лимит размера")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Файл не найден при загрузке", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Файл не найден")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		helpers.Error(w, http.StatusBadRequest, "Имя файла отсутствует")
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	isPublic := strings.ToLower(r.FormValue("is_public")) == "true"

	// Поля формы проверяются после разбора multipart —
	// к бинарной части схемная валидация неприменима.
	if errs := validator.ValidateUpload(title, description); len(errs) > 0 {
		helpers.ValidationError(w, errs)
		return
	}

	doc, err := h.service.Upload(r.Context(), services.UploadInput{
		UserID:       userID,
		File:         file,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Title:        title,
		Description:  description,
		IsPublic:     isPublic,
	})
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка при сохранении документа", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка при сохранении документа")
		return
	}

	helpers.JSON(w, http.StatusCreated, "Документ загружен", doc)
}

// ListDocuments godoc
// @Summary Список документов пользователя (новые сверху)
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /api/documents [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)

	docs, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка при получении документов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка при получении документов")
		return
	}

	helpers.JSON(w, http.StatusOK, "Документы получены", docs)
}

// GetDocument godoc
// @Summary Получить документ по ID
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {object} helpers.Response
// @Failure 400 {object} helpers.Response "Некорректный ID"
// @Failure 403 {object} helpers.Response "Доступ запрещён"
// @Failure 404 {object} helpers.Response "Документ не найден"
// @Router /api/documents/{id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)
	role, _ := r.Context().Value(middleware.ContextRole).(string)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID документа")
		return
	}

	doc, err := h.service.Get(r.Context(), userID, role == "admin", id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDocumentNotFound):
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
		case errors.Is(err, services.ErrForbidden):
			helpers.Error(w, http.StatusForbidden, "Доступ запрещён")
		default:
			logger.WithCtx(r.Context()).Error("Ошибка получения документа", zap.Int("doc_id", id), zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка получения документа")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, "Документ получен", doc)
}

// DeleteDocument godoc
// @Summary Удалить документ (владелец или админ)
// @Tags documents
// @Security ApiKeyAuth
// @Param id path int true "ID документа"
// @Success 200 {object} helpers.Response
// @Failure 400 {object} helpers.Response "Некорректный ID"
// @Failure 403 {object} helpers.Response "Доступ запрещён"
// @Failure 404 {object} helpers.Response "Документ не найден"
// @Router /api/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.ContextUserID).(int)
	role, _ := r.Context().Value(middleware.ContextRole).(string)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID документа")
		return
	}

	if err := h.service.Delete(r.Context(), userID, role == "admin", id); err != nil {
		switch {
		case errors.Is(err, repository.ErrDocumentNotFound):
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
		case errors.Is(err, services.ErrForbidden):
			helpers.Error(w, http.StatusForbidden, "Доступ запрещён")
		default:
			logger.WithCtx(r.Context()).Error("Ошибка при удалении документа", zap.Int("doc_id", id), zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка при удалении")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, "Документ удалён", nil)
}

// GetAllDocuments godoc
// @Summary Все документы (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /api/admin/documents [get]
func (h *DocumentHandler) GetAllDocuments(w http.ResponseWriter, r *http.Request) {
	docs, total, err := h.service.GetAllDocuments(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка при получении всех документов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка при получении документов")
		return
	}

	helpers.JSON(w, http.StatusOK, "Документы получены", map[string]interface{}{
		"documents": docs,
		"total":     total,
	})
}
