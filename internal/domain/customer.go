package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	// Простая форма local@domain.tld, без попытки реализовать весь RFC 5322.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)
	// Международный формат: плюс и от 1 до 14 цифр без ведущего нуля.
	phoneIntlPattern = regexp.MustCompile(`^\+[1-9]\d{0,13}$`)
	// Локальный формат с дефисами: DDD-DDD-DDDD.
	phoneLocalPattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
)

// Customer представляет клиента CRM.
type Customer struct {
	ID    string
	Name  string
	Email string
	// Phone опционален; пустая строка означает отсутствие телефона.
	Phone string
	// CreatedAt фиксируется при создании и больше не меняется.
	CreatedAt time.Time
}

// CustomerInput — входные данные мутаций создания клиента.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// NormalizeEmail приводит email к каноническому виду: нижний регистр, без
// окружающих пробелов. Уникальность email проверяется по этой форме.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate проверяет полевые инварианты входных данных и возвращает список
// всех найденных нарушений. Уникальность email проверяет сервис мутаций,
// поскольку для этого нужно хранилище.
func (in CustomerInput) Validate() []error {
	var errs []error

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}

	email := NormalizeEmail(in.Email)
	switch {
	case email == "":
		errs = append(errs, ErrEmailRequired)
	case !emailPattern.MatchString(email):
		errs = append(errs, ErrEmailInvalid)
	}

	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if !phoneIntlPattern.MatchString(phone) && !phoneLocalPattern.MatchString(phone) {
			errs = append(errs, ErrPhoneInvalid)
		}
	}

	return errs
}

// NewCustomer собирает клиента из проверенных входных данных, нормализуя
// имя и email.
func NewCustomer(id string, in CustomerInput, now time.Time) Customer {
	return Customer{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Email:     NormalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
	}
}
