package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"docvault/internal/models"
	"docvault/internal/repository"
)

// Мок-репозиторий документов
type mockDocRepo struct {
	docs    map[int]*models.Document
	nextID  int
	saveErr error
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{docs: make(map[int]*models.Document), nextID: 1}
}

func (m *mockDocRepo) SaveDocument(_ context.Context, doc *models.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	doc.ID = m.nextID
	m.nextID++
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *mockDocRepo) GetDocumentsByUser(_ context.Context, userID int) ([]models.Document, error) {
	var out []models.Document
	for _, d := range m.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	// Новые сверху, как в настоящем репозитории
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockDocRepo) GetDocumentByID(_ context.Context, id int) (*models.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockDocRepo) Search(_ context.Context, userID int, query string) ([]models.Document, error) {
	needle := strings.ToLower(query)
	var out []models.Document
	for _, d := range m.docs {
		if d.UserID != userID && !d.IsPublic {
			continue
		}
		if strings.Contains(strings.ToLower(d.Title), needle) ||
			strings.Contains(strings.ToLower(d.Description), needle) ||
			(d.ExtractedText != nil && strings.Contains(strings.ToLower(*d.ExtractedText), needle)) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDocRepo) GetAllDocuments(_ context.Context) ([]models.Document, int, error) {
	var out []models.Document
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (m *mockDocRepo) DeleteDocument(_ context.Context, id int) error {
	if _, ok := m.docs[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

// Фейковое хранилище в памяти
type fakeStore struct {
	files  map[string][]byte
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (f *fakeStore) Save(src io.Reader, originalName string) (string, int64, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", 0, err
	}
	f.nextID++
	name := "stored-" + strings.Repeat("x", f.nextID) + ".bin"
	f.files[name] = data
	return name, int64(len(data)), nil
}

func (f *fakeStore) PublicURL(storedName string) string {
	return "http://localhost:8080/uploads/" + storedName
}

func (f *fakeStore) Path(storedName string) string { return "/tmp/" + storedName }

func (f *fakeStore) Delete(storedName string) (bool, error) {
	if _, ok := f.files[storedName]; !ok {
		return false, nil
	}
	delete(f.files, storedName)
	return true, nil
}

// Извлекатель, который всегда падает
type panicExtractor struct{}

func (panicExtractor) Extract(string) string { panic("ocr недоступен") }

type fixedExtractor struct{ text string }

func (e fixedExtractor) Extract(string) string { return e.text }

func strPtr(s string) *string { return &s }

func upload(t *testing.T, svc *DocumentService, userID int, title, description string, isPublic bool) *models.DocumentResponse {
	t.Helper()
	doc, err := svc.Upload(context.Background(), UploadInput{
		UserID:       userID,
		File:         bytes.NewReader([]byte("file-bytes")),
		OriginalName: "scan.pdf",
		MimeType:     "application/pdf",
		Title:        title,
		Description:  description,
		IsPublic:     isPublic,
	})
	if err != nil {
		t.Fatalf("ошибка загрузки: %v", err)
	}
	return doc
}

func TestUpload_ExtractionFailureDoesNotAbort(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, panicExtractor{})

	doc := upload(t, svc, 1, "Договор аренды", "", false)

	if doc.ID == 0 {
		t.Fatal("документ не сохранён")
	}
	if doc.ExtractedText != nil {
		t.Fatalf("при сбое извлечения текст должен быть пуст, получено: %q", *doc.ExtractedText)
	}
	if doc.SizeBytes != int64(len("file-bytes")) {
		t.Fatalf("размер должен браться из хранилища, получено: %d", doc.SizeBytes)
	}
	if doc.FileURL == "" {
		t.Fatal("file_url не построен")
	}
}

func TestUpload_MetadataFailureRemovesStoredFile(t *testing.T) {
	repo := newMockDocRepo()
	repo.saveErr = errors.New("база недоступна")
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{"текст"})

	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:       1,
		File:         bytes.NewReader([]byte("data")),
		OriginalName: "scan.pdf",
		Title:        "Счёт",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка сохранения метаданных")
	}
	if len(store.files) != 0 {
		t.Fatalf("файл должен быть удалён из хранилища после отката, осталось: %d", len(store.files))
	}
}

func TestGetDocument_AccessControl(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	private := upload(t, svc, 1, "Личный документ", "", false)
	public := upload(t, svc, 1, "Публичный документ", "", true)

	// Владелец видит свой закрытый документ
	if _, err := svc.Get(context.Background(), 1, false, private.ID); err != nil {
		t.Fatalf("владелец не получил свой документ: %v", err)
	}

	// Чужой закрытый документ — запрещено
	if _, err := svc.Get(context.Background(), 2, false, private.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ожидался запрет доступа, получено: %v", err)
	}

	// Чужой публичный документ — можно
	if _, err := svc.Get(context.Background(), 2, false, public.ID); err != nil {
		t.Fatalf("публичный документ должен быть доступен: %v", err)
	}

	// Админ видит всё
	if _, err := svc.Get(context.Background(), 99, true, private.ID); err != nil {
		t.Fatalf("админ должен видеть любой документ: %v", err)
	}

	// Несуществующий ID
	if _, err := svc.Get(context.Background(), 1, false, 12345); !errors.Is(err, repository.ErrDocumentNotFound) {
		t.Fatalf("ожидался 'не найден', получено: %v", err)
	}
}

func TestSearch_TagsMatchedField(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	repo.docs[10] = &models.Document{ID: 10, UserID: 1, Title: "Invoice 2024", StoredName: "a.pdf"}
	repo.docs[11] = &models.Document{ID: 11, UserID: 1, Title: "Отчёт", Description: "годовой invoice отчёт", StoredName: "b.pdf"}
	repo.docs[12] = &models.Document{ID: 12, UserID: 1, Title: "Скан", ExtractedText: strPtr("оплата по invoice 77"), StoredName: "c.pdf"}
	// Чужой закрытый документ не должен попасть в выдачу
	repo.docs[13] = &models.Document{ID: 13, UserID: 2, Title: "Invoice чужой", StoredName: "d.pdf"}

	results, err := svc.Search(context.Background(), 1, "invoice")
	if err != nil {
		t.Fatalf("ошибка поиска: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ожидалось 3 результата, получено %d", len(results))
	}

	byID := make(map[int]models.SearchResult, len(results))
	for _, r := range results {
		byID[r.Document.ID] = r
	}
	if byID[10].MatchedField != "title" {
		t.Fatalf("ожидалось совпадение по title, получено %q", byID[10].MatchedField)
	}
	if byID[11].MatchedField != "description" {
		t.Fatalf("ожидалось совпадение по description, получено %q", byID[11].MatchedField)
	}
	if byID[12].MatchedField != "extracted_text" {
		t.Fatalf("ожидалось совпадение по extracted_text, получено %q", byID[12].MatchedField)
	}
}

func TestSearch_WildcardCharactersAreLiteral(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	repo.docs[20] = &models.Document{ID: 20, UserID: 1, Title: "Скидка 100% на тариф", StoredName: "a.pdf"}
	repo.docs[21] = &models.Document{ID: 21, UserID: 1, Title: "Invoice 100 final", StoredName: "b.pdf"}

	results, err := svc.Search(context.Background(), 1, "100%")
	if err != nil {
		t.Fatalf("ошибка поиска: %v", err)
	}

	// "%" — не шаблон: находится только документ, содержащий "100%" буквально
	if len(results) != 1 {
		t.Fatalf("ожидался 1 результат, получено %d", len(results))
	}
	if results[0].Document.ID != 20 {
		t.Fatalf("ожидался документ 20, получен %d", results[0].Document.ID)
	}
	if results[0].MatchedField != "title" {
		t.Fatalf("у найденного документа должно быть совпавшее поле, получено %q", results[0].MatchedField)
	}
}

func TestSearch_EmptyQueryHasNoMatchedField(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	repo.docs[30] = &models.Document{ID: 30, UserID: 1, Title: "Договор", StoredName: "a.pdf"}
	repo.docs[31] = &models.Document{ID: 31, UserID: 1, Title: "Счёт", StoredName: "b.pdf"}

	results, err := svc.Search(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("ошибка поиска: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("пустой запрос должен вернуть все доступные документы, получено %d", len(results))
	}
	for _, r := range results {
		if r.MatchedField != "" {
			t.Fatalf("при пустом запросе совпавшего поля нет, получено %q", r.MatchedField)
		}
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	base := time.Now()
	repo.docs[1] = &models.Document{ID: 1, UserID: 1, Title: "Старый", StoredName: "a.pdf", CreatedAt: base.Add(-2 * time.Hour)}
	repo.docs[2] = &models.Document{ID: 2, UserID: 1, Title: "Средний", StoredName: "b.pdf", CreatedAt: base.Add(-time.Hour)}
	repo.docs[3] = &models.Document{ID: 3, UserID: 1, Title: "Новый", StoredName: "c.pdf", CreatedAt: base}

	docs, err := svc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ошибка получения документов: %v", err)
	}

	want := []int{3, 2, 1}
	if len(docs) != len(want) {
		t.Fatalf("ожидалось %d документов, получено %d", len(want), len(docs))
	}
	for i, id := range want {
		if docs[i].Document.ID != id {
			t.Fatalf("позиция %d: ожидался документ %d, получен %d", i, id, docs[i].Document.ID)
		}
	}
}

func TestDelete_OwnerAndAdminOnly(t *testing.T) {
	repo := newMockDocRepo()
	store := newFakeStore()
	svc := NewDocumentService(repo, store, fixedExtractor{""})

	doc := upload(t, svc, 1, "Удаляемый документ", "", false)

	// Чужой пользователь удалить не может
	if err := svc.Delete(context.Background(), 2, false, doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ожидался запрет, получено: %v", err)
	}

	// Владелец удаляет: пропадают и метаданные, и файл
	if err := svc.Delete(context.Background(), 1, false, doc.ID); err != nil {
		t.Fatalf("владелец не смог удалить: %v", err)
	}
	if _, err := repo.GetDocumentByID(context.Background(), doc.ID); !errors.Is(err, repository.ErrDocumentNotFound) {
		t.Fatal("метаданные не удалены")
	}
	if len(store.files) != 0 {
		t.Fatal("файл не удалён из хранилища")
	}

	// Повторное удаление — «не найден»
	if err := svc.Delete(context.Background(), 1, false, doc.ID); !errors.Is(err, repository.ErrDocumentNotFound) {
		t.Fatalf("ожидался 'не найден', получено: %v", err)
	}
}
