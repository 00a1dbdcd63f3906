package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"docvault/internal/logger"
	"docvault/internal/models"

	"go.uber.org/zap"
)

var ErrForbidden = errors.New("доступ запрещён")

type DocumentRepo interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	GetDocumentsByUser(ctx context.Context, userID int) ([]models.Document, error)
	GetDocumentByID(ctx context.Context, id int) (*models.Document, error)
	Search(ctx context.Context, userID int, query string) ([]models.Document, error)
	GetAllDocuments(ctx context.Context) ([]models.Document, int, error)
	DeleteDocument(ctx context.Context, id int) error
}

type FileStore interface {
	Save(src io.Reader, originalName string) (string, int64, error)
	PublicURL(storedName string) string
	Path(storedName string) string
	Delete(storedName string) (bool, error)
}

type DocumentServiceInterface interface {
	Upload(ctx context.Context, in UploadInput) (*models.DocumentResponse, error)
	ListByUser(ctx context.Context, userID int) ([]models.DocumentResponse, error)
	Get(ctx context.Context, userID int, isAdmin bool, id int) (*models.DocumentResponse, error)
	Search(ctx context.Context, userID int, query string) ([]models.SearchResult, error)
	GetAllDocuments(ctx context.Context) ([]models.DocumentResponse, int, error)
	Delete(ctx context.Context, userID int, isAdmin bool, id int) error
}

type DocumentService struct {
	repo      DocumentRepo
	store     FileStore
	extractor TextExtractor
}

func NewDocumentService(repo DocumentRepo, store FileStore, extractor TextExtractor) *DocumentService {
	return &DocumentService{
		repo:      repo,
		store:     store,
		extractor: extractor,
	}
}

type UploadInput struct {
	UserID       int
	File         io.Reader
	OriginalName string
	MimeType     string
	Title        string
	Description  string
	IsPublic     bool
}

// Upload сохраняет поток в хранилище, извлекает текст и пишет метаданные.
// Сбой извлечения текста не прерывает загрузку; сбой базы откатывает файл.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*models.DocumentResponse, error) {
	logger.WithCtx(ctx).Info("Сервис: загрузка документа",
		zap.Int("user_id", in.UserID), zap.String("title", in.Title))

	storedName, size, err := s.store.Save(in.File, in.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("сохранение файла: %w", err)
	}

	text := s.extractText(ctx, s.store.Path(storedName))
	var extracted *string
	if text != "" {
		extracted = &text
	}

	doc := &models.Document{
		UserID:        in.UserID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		StoredName:    storedName,
		MimeType:      in.MimeType,
		SizeBytes:     size,
		ExtractedText: extracted,
		IsPublic:      in.IsPublic,
	}

	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		// Метаданные не записались — файл в хранилище больше никому не нужен.
		_, _ = s.store.Delete(storedName)
		return nil, err
	}

	logger.WithCtx(ctx).Info("Документ загружен",
		zap.Int("doc_id", doc.ID), zap.String("stored_name", storedName), zap.Int64("size", size))

	return s.withURL(doc), nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID int) ([]models.DocumentResponse, error) {
	docs, err := s.repo.GetDocumentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *s.withURL(&docs[i]))
	}
	return out, nil
}

// Get возвращает документ, если запрашивает владелец, админ,
// или документ публичный. Иначе — ErrForbidden.
func (s *DocumentService) Get(ctx context.Context, userID int, isAdmin bool, id int) (*models.DocumentResponse, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canAccess(doc, userID, isAdmin) {
		logger.WithCtx(ctx).Warn("Попытка доступа к чужому закрытому документу",
			zap.Int("user_id", userID), zap.Int("doc_id", id))
		return nil, ErrForbidden
	}

	return s.withURL(doc), nil
}

// Search ищет по своим и публичным документам и помечает, какое поле совпало.
// Приоритет пометки: название, описание, извлечённый текст.
func (s *DocumentService) Search(ctx context.Context, userID int, query string) ([]models.SearchResult, error) {
	docs, err := s.repo.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]models.SearchResult, 0, len(docs))
	for i := range docs {
		d := docs[i]
		results = append(results, models.SearchResult{
			Document:     d,
			FileURL:      s.store.PublicURL(d.StoredName),
			MatchedField: matchedField(&d, needle),
		})
	}
	return results, nil
}

func (s *DocumentService) GetAllDocuments(ctx context.Context) ([]models.DocumentResponse, int, error) {
	logger.Log.Info("Сервис: получение всех документов")
	docs, total, err := s.repo.GetAllDocuments(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *s.withURL(&docs[i]))
	}
	return out, total, nil
}

// Delete удаляет метаданные, затем файл. Отсутствующий на диске файл
// не считается ошибкой удаления.
func (s *DocumentService) Delete(ctx context.Context, userID int, isAdmin bool, id int) error {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}

	if doc.UserID != userID && !isAdmin {
		logger.WithCtx(ctx).Warn("Попытка удаления чужого документа",
			zap.Int("user_id", userID), zap.Int("doc_id", id))
		return ErrForbidden
	}

	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if removed, err := s.store.Delete(doc.StoredName); err != nil {
		logger.WithCtx(ctx).Error("Файл не удалился с диска после удаления метаданных",
			zap.String("stored_name", doc.StoredName), zap.Error(err))
	} else if !removed {
		logger.WithCtx(ctx).Warn("Файл уже отсутствовал на диске",
			zap.String("stored_name", doc.StoredName))
	}

	logger.WithCtx(ctx).Info("Документ удалён", zap.Int("doc_id", id))
	return nil
}

// extractText страхует контракт заглушки на уровне пайплайна:
// что бы ни случилось внутри извлечения, загрузка продолжается.
func (s *DocumentService) extractText(ctx context.Context, path string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Warn("Извлечение текста упало, документ сохраняется без текста",
				zap.Any("panic", rec), zap.String("path", path))
			text = ""
		}
	}()
	return s.extractor.Extract(path)
}

func (s *DocumentService) canAccess(doc *models.Document, userID int, isAdmin bool) bool {
	return doc.UserID == userID || doc.IsPublic || isAdmin
}

func (s *DocumentService) withURL(doc *models.Document) *models.DocumentResponse {
	return &models.DocumentResponse{
		Document: *doc,
		FileURL:  s.store.PublicURL(doc.StoredName),
	}
}

func matchedField(d *models.Document, needle string) string {
	// Пустой запрос возвращает все доступные документы;
	// конкретного совпавшего поля у них нет.
	if needle == "" {
		return ""
	}
	switch {
	case strings.Contains(strings.ToLower(d.Title), needle):
		return "title"
	case strings.Contains(strings.ToLower(d.Description), needle):
		return "description"
	case d.ExtractedText != nil && strings.Contains(strings.ToLower(*d.ExtractedText), needle):
		return "extracted_text"
	default:
		return ""
	}
}
