package domain

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding — вектор продукта вместе с данными, которые возвращаются при поиске.
type Embedding struct {
	ProductID ProductID
	Vector    Vector
	Payload   Payload
}

func NewEmbedding(productID ProductID, vector Vector, payload Payload) *Embedding {
	return &Embedding{
		ProductID: productID,
		Vector:    vector,
		Payload:   payload,
	}
}

// NewPayload собирает payload точки из полей продукта.
// Цена хранится строкой, чтобы не терять точность. Числовой id кладётся числом.
func NewPayload(p *Product) Payload {
	var id any = p.ID.String()
	if n, ok := p.ID.Int64(); ok {
		id = n
	}

	return Payload{
		"id":          id,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
	}
}
