package domain

import "github.com/shopspring/decimal"

func init() {
	// Цена отдаётся клиенту числом, а не строкой.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product описывает продукт каталога. Создаётся и изменяется вне сервиса,
// сервис только читает его (кроме колонки embedding, которую пишет cmd/embedder).
// ID отдаётся клиенту в том виде, в каком хранится: числом или строкой.
type Product struct {
	ID          ProductID       `db:"id" json:"id" swaggertype:"string" example:"p2"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Embedding   Vector          `db:"-" json:"-"`
	// Similarity заполняется только бэкендом поиска, который возвращает оценку.
	Similarity *float32 `db:"-" json:"similarity,omitempty"`
}

func NewProduct(id ProductID, name, description string, price decimal.Decimal) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
	}
}

// EmbeddingText — текст, по которому строится эмбеддинг продукта.
func (p *Product) EmbeddingText() string {
	return p.Name + " " + p.Description
}
