package services

import (
	"fmt"
	"path/filepath"

	"docvault/internal/logger"

	"go.uber.org/zap"
)

type TextExtractor interface {
	Extract(path string) string
}

// StubExtractor — заглушка вместо настоящего OCR.
// Любой внутренний сбой гасится: загрузка документа не должна падать
// из-за распознавания текста.
type StubExtractor struct{}

func NewStubExtractor() *StubExtractor {
	return &StubExtractor{}
}

func (e *StubExtractor) Extract(path string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Warn("Извлечение текста упало, продолжаем без текста",
				zap.Any("panic", rec), zap.String("path", path))
			text = ""
		}
	}()

	// TODO: подключить реальное распознавание (tesseract) вместо заглушки
	return fmt.Sprintf("Распознанный текст документа %s", filepath.Base(path))
}
