package handlers

import (
	"net/http"
	"strings"
	"time"

	"docvault/internal/logger"
	"docvault/internal/middleware"
	"docvault/internal/services"
	helpers "docvault/internal/utils/helpres"

	"go.uber.org/zap"
)

type SearchHandler struct {
	documentService services.DocumentServiceInterface
}

func NewSearchHandler(documentSvc services.DocumentServiceInterface) *SearchHandler {
	return &SearchHandler{documentService: documentSvc}
}

// SearchDocuments godoc
// @Summary Поиск по своим и публичным документам
// @Tags search
// @Security ApiKeyAuth
// @Produce json
// @Param query query string false "Поисковый запрос"
// @Success 200 {object} helpers.Response
// @Router /api/search [get]
func (h *SearchHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	userID := r.Context().Value(middleware.ContextUserID).(int)

	// Пустой запрос допустим: вернутся все доступные документы.
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	start := time.Now()
	log.Info("search: старт", zap.String("query", query))

	results, err := h.documentService.Search(r.Context(), userID, query)
	if err != nil {
		log.Error("search: ошибка поиска по документам", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка поиска")
		return
	}

	log.Info("search: готово",
		zap.String("query", query),
		zap.Int("documents_count", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)

	helpers.JSON(w, http.StatusOK, "Поиск выполнен", results)
}
