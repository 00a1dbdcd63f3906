package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Коды правил — машиночитаемые, сообщения — для людей.
const (
	CodeRequired     = "required"
	CodeInvalidEmail = "invalid_email"
	CodeMinLength    = "min_length"
	CodeMaxLength    = "max_length"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Errors []FieldError

func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRegister проверяет все поля регистрации и возвращает
// полный список нарушений, а не первое попавшееся.
func ValidateRegister(email, password, name string) Errors {
	var errs Errors
	errs = append(errs, checkEmail(email)...)
	if password == "" {
		errs = append(errs, FieldError{"password", "Пароль обязателен", CodeRequired})
	} else if utf8.RuneCountInString(password) < 6 {
		errs = append(errs, FieldError{"password", "Пароль должен быть не короче 6 символов", CodeMinLength})
	}
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{"name", "Имя обязательно", CodeRequired})
	} else if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		errs = append(errs, FieldError{"name", "Имя должно быть не короче 2 символов", CodeMinLength})
	}
	return errs
}

func ValidateLogin(email, password string) Errors {
	var errs Errors
	errs = append(errs, checkEmail(email)...)
	if password == "" {
		errs = append(errs, FieldError{"password", "Пароль обязателен", CodeRequired})
	}
	return errs
}

func ValidateProfileUpdate(name string) Errors {
	var errs Errors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{"name", "Имя обязательно", CodeRequired})
	} else if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		errs = append(errs, FieldError{"name", "Имя должно быть не короче 2 символов", CodeMinLength})
	}
	return errs
}

// ValidateUpload вызывается после разбора multipart-формы:
// к потоковой бинарной части схемная валидация неприменима.
func ValidateUpload(title, description string) Errors {
	var errs Errors
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		errs = append(errs, FieldError{"title", "Название обязательно", CodeRequired})
	case utf8.RuneCountInString(title) < 2:
		errs = append(errs, FieldError{"title", "Название должно быть от 2 до 255 символов", CodeMinLength})
	case utf8.RuneCountInString(title) > 255:
		errs = append(errs, FieldError{"title", "Название должно быть от 2 до 255 символов", CodeMaxLength})
	}
	if utf8.RuneCountInString(description) > 1000 {
		errs = append(errs, FieldError{"description", "Описание не длиннее 1000 символов", CodeMaxLength})
	}
	return errs
}

func checkEmail(email string) Errors {
	email = strings.TrimSpace(email)
	if email == "" {
		return Errors{{"email", "Email обязателен", CodeRequired}}
	}
	if !emailRe.MatchString(email) {
		return Errors{{"email", "Некорректный email", CodeInvalidEmail}}
	}
	return nil
}
