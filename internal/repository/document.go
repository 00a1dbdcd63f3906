package repository

import (
	"context"
	"errors"
	"strings"

	"docvault/internal/logger"
	"docvault/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrDocumentNotFound = errors.New("документ не найден")

type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, user_id, title, description, stored_name, mime_type, size_bytes, extracted_text, is_public, created_at, updated_at`

// Сохранение документа
func (r *DocumentRepository) SaveDocument(ctx context.Context, doc *models.Document) error {
	logger.Log.Info("Репозиторий: сохранение документа", zap.String("title", doc.Title), zap.Int("user_id", doc.UserID))
	query := `
		INSERT INTO documents (user_id, title, description, stored_name, mime_type, size_bytes, extracted_text, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		doc.UserID,
		doc.Title,
		doc.Description,
		doc.StoredName,
		doc.MimeType,
		doc.SizeBytes,
		doc.ExtractedText,
		doc.IsPublic,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка сохранения документа (repo)", zap.Error(err))
	}
	return err
}

// Документы пользователя, новые сверху
func (r *DocumentRepository) GetDocumentsByUser(ctx context.Context, userID int) ([]models.Document, error) {
	logger.Log.Debug("Репозиторий: документы пользователя", zap.Int("user_id", userID))
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		logger.Log.Error("Ошибка получения документов пользователя (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Получение по ID
func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id int) (*models.Document, error) {
	logger.Log.Debug("Репозиторий: получение документа по ID", zap.Int("doc_id", id))
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var d models.Document
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.UserID,
		&d.Title,
		&d.Description,
		&d.StoredName,
		&d.MimeType,
		&d.SizeBytes,
		&d.ExtractedText,
		&d.IsPublic,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		logger.Log.Error("Ошибка получения документа по ID (repo)", zap.Int("doc_id", id), zap.Error(err))
		return nil, err
	}
	return &d, nil
}

// Спецсимволы LIKE в пользовательском запросе ищутся буквально.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// Поиск по своим и публичным документам: название, описание, извлечённый текст
func (r *DocumentRepository) Search(ctx context.Context, userID int, query string) ([]models.Document, error) {
	q := likePattern(query)
	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE (user_id = $1 OR is_public = true)
		  AND (title ILIKE $2 OR description ILIKE $2 OR extracted_text ILIKE $2)
		ORDER BY created_at DESC
	`, userID, q)
	if err != nil {
		logger.Log.Error("Ошибка поиска документов (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Для админки — все документы и общее количество
func (r *DocumentRepository) GetAllDocuments(ctx context.Context) ([]models.Document, int, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logger.Log.Error("Ошибка получения всех документов (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		logger.Log.Error("Ошибка подсчёта документов (repo)", zap.Error(err))
		return nil, 0, err
	}

	return docs, total, nil
}

// Удаление
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id int) error {
	logger.Log.Info("Репозиторий: удаление документа", zap.Int("doc_id", id))
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления документа (repo)", zap.Int("doc_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func scanDocuments(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Title,
			&d.Description,
			&d.StoredName,
			&d.MimeType,
			&d.SizeBytes,
			&d.ExtractedText,
			&d.IsPublic,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			logger.Log.Error("Ошибка сканирования документа (repo)", zap.Error(err))
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
