package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const urlPrefix = "/uploads"

// LocalStorage пишет загруженные файлы на диск под случайными именами.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// EnsureDir создаёт каталог хранилища, если его нет. Идемпотентна.
func (s *LocalStorage) EnsureDir() error {
	return os.MkdirAll(s.dir, os.ModePerm)
}

// Save сохраняет поток в файл под именем uuid + исходное расширение.
// Размер возвращается по фактически записанным байтам, а не по заголовкам клиента.
// Файл не буферизуется в памяти целиком.
func (s *LocalStorage) Save(src io.Reader, originalName string) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	storedName := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		logger.Log.Error("Ошибка создания файла в хранилище", zap.String("stored_name", storedName), zap.Error(err))
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		logger.Log.Error("Ошибка записи файла в хранилище", zap.String("stored_name", storedName), zap.Error(err))
		_ = os.Remove(filepath.Join(s.dir, storedName))
		return "", 0, err
	}

	return storedName, size, nil
}

// PublicURL детерминированно строит ссылку на файл от базового URL.
func (s *LocalStorage) PublicURL(storedName string) string {
	return s.baseURL + urlPrefix + "/" + storedName
}

// Path возвращает путь к файлу на диске. Имя обрезается до базового,
// чтобы исключить выход за пределы каталога хранилища.
func (s *LocalStorage) Path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(storedName))
}

// Delete удаляет файл. Уже отсутствующий файл — не ошибка: вернётся false.
func (s *LocalStorage) Delete(storedName string) (bool, error) {
	err := os.Remove(s.Path(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		logger.Log.Error("Ошибка удаления файла из хранилища", zap.String("stored_name", storedName), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Dir — корень хранилища (для статической раздачи).
func (s *LocalStorage) Dir() string {
	return s.dir
}
