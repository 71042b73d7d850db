package apperrors

// APIError interface for custom error types
type APIError interface {
	error
	Status() int
}

// NotFoundError kayıt bulunamadığında dönen custom error type.
// Sadece tekil lookup'lar (GetByID) bu hatayı üretir; boş liste
// sonuçları hata değildir.
type NotFoundError struct {
	Message string
}

// Error NotFoundError'un error interface implementation'ı
func (e *NotFoundError) Error() string {
	return e.Message
}

// Status NotFoundError'un APIError interface implementation'ı
func (e *NotFoundError) Status() int {
	return 404
}

// NewNotFound yeni NotFoundError oluşturur
func NewNotFound(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// ValidationError validation hatası için custom error type
type ValidationError struct {
	Message string
	Field   string
	Value   interface{}
}

// Error ValidationError'un error interface implementation'ı
func (e *ValidationError) Error() string {
	return e.Message
}

// Status ValidationError'un APIError interface implementation'ı
func (e *ValidationError) Status() int {
	return 400
}

// NewValidation yeni ValidationError oluşturur
func NewValidation(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Message: message, Field: field, Value: value}
}

// PersistenceError store kaynaklı yazma/okuma hatası için custom error type.
// İç katman retry yapmaz; hata olduğu gibi caller'a taşınır.
type PersistenceError struct {
	Message string
	Err     error
}

// Error PersistenceError'un error interface implementation'ı
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Status PersistenceError'un APIError interface implementation'ı
func (e *PersistenceError) Status() int {
	return 500
}

// Unwrap altta yatan driver hatasını açar
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistence yeni PersistenceError oluşturur
func NewPersistence(message string, err error) *PersistenceError {
	return &PersistenceError{Message: message, Err: err}
}

// AuthError authentication hatası için custom error type
type AuthError struct {
	Message    string
	StatusCode int
}

// Error AuthError'un error interface implementation'ı
func (e *AuthError) Error() string {
	return e.Message
}

// Status AuthError'un APIError interface implementation'ı
func (e *AuthError) Status() int {
	if e.StatusCode == 0 {
		return 401
	}
	return e.StatusCode
}

// RBACError authorization hatası için custom error type
type RBACError struct {
	Message  string
	Resource string
	Action   string
}

// Error RBACError'un error interface implementation'ı
func (e *RBACError) Error() string {
	return e.Message
}

// Status RBACError'un APIError interface implementation'ı
func (e *RBACError) Status() int {
	return 403
}
