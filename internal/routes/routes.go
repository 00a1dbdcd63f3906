package routes

import (
	"net/http"

	"docvault/internal/handlers"
	"docvault/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	documentHandler *handlers.DocumentHandler,
	searchHandler *handlers.SearchHandler,
	jwtSecret string,
	uploadDir string,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recoverer)

	// --- Публичные маршруты ---
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	// --- Защищённые JWT ---
	authProtected := auth.PathPrefix("").Subrouter()
	authProtected.Use(middleware.JWTAuth(jwtSecret))
	authProtected.HandleFunc("/me", authHandler.Me).Methods("GET")
	authProtected.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PATCH")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuth(jwtSecret))

	api.HandleFunc("/upload", documentHandler.UploadDocument).Methods("POST")
	api.HandleFunc("/documents", documentHandler.ListDocuments).Methods("GET")
	// ID не ограничен [0-9]+ в шаблоне: нечисловой ID должен дать 400, а не 404.
	api.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", documentHandler.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/search", searchHandler.SearchDocuments).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.OnlyRole("admin"))
	admin.HandleFunc("/documents", documentHandler.GetAllDocuments).Methods("GET")

	// Раздача сохранённых файлов как есть
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))),
	).Methods("GET")
}
