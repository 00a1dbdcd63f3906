package app

import (
	"time"

	"docvault/internal/config"
	"docvault/internal/db"
	"docvault/internal/handlers"
	"docvault/internal/repository"
	"docvault/internal/routes"
	"docvault/internal/services"
	"docvault/internal/storage"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Хранилище файлов
	fileStore := storage.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err := fileStore.EnsureDir(); err != nil {
		return nil, err
	}

	tokenTTL, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	docRepo := repository.NewDocumentRepository(conn)

	// Сервисы
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, tokenTTL)
	docService := services.NewDocumentService(docRepo, fileStore, services.NewStubExtractor())

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService)
	docHandler := handlers.NewDocumentHandler(docService, cfg.MaxUploadSize)
	searchHandler := handlers.NewSearchHandler(docService)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, docHandler, searchHandler, cfg.JWTSecret, fileStore.Dir())

	return router, nil
}
