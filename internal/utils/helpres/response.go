package helpers

import (
	"encoding/json"
	"net/http"

	"docvault/internal/validator"
)

// Response — единый конверт ответа API.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
	if err != nil {
		return
	}
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Success:    false,
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    errMsg,
	})
	if err != nil {
		return
	}
}

// ValidationError отдаёт все нарушения разом: и списком, и по полям.
func ValidationError(w http.ResponseWriter, errs validator.Errors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(Response{
		Success:    false,
		StatusCode: http.StatusBadRequest,
		Error:      "Validation Failed",
		Message:    "Ошибка валидации",
		Details: map[string]interface{}{
			"errors":        errs,
			"errorsByField": errs.ByField(),
		},
	})
	if err != nil {
		return
	}
}
