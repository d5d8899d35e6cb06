package e

import "fmt"

var (
	// Ошибки запроса рекомендаций
	ErrMethodNotAllowed = fmt.Errorf("Method not allowed")
	ErrMalformedRequest = fmt.Errorf("An unexpected error occurred")
	ErrNullBody         = fmt.Errorf("request body is null")
	ErrTrailingData     = fmt.Errorf("unexpected data after JSON body")

	// Ошибки хранилища
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrEmbeddingMissing = fmt.Errorf("product has no embedding")
	ErrLookupFailed     = fmt.Errorf("embedding lookup failed")
	ErrMatchFailed      = fmt.Errorf("similarity search failed")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVectors         = fmt.Errorf("empty vectors")
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnknownMatchBackend  = fmt.Errorf("unknown match backend")

	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
