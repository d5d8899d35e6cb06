package domain

// Vector — эмбеддинг продукта фиксированной длины.
// Кодирование в тип vector PostgreSQL делает pgvector-go на уровне репозитория.
type Vector []float32

// Float32s возвращает копию значений вектора.
func (v Vector) Float32s() []float32 {
	return append([]float32(nil), v...)
}
