package models

import "time"

type Document struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	StoredName    string    `json:"stored_name"`
	MimeType      string    `json:"mime_type"`
	SizeBytes     int64     `json:"size_bytes"`
	ExtractedText *string   `json:"extracted_text,omitempty"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentResponse — документ с производной ссылкой на файл.
type DocumentResponse struct {
	Document
	FileURL string `json:"file_url"`
}

// SearchResult — результат поиска с пометкой совпавшего поля.
type SearchResult struct {
	Document
	FileURL      string `json:"file_url"`
	MatchedField string `json:"matched_field"`
}
