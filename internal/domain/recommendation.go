package domain

import (
	"bytes"
	"encoding/json"
)

// ProductRef — идентификатор продукта в том виде, в каком его прислал клиент.
// Значение не валидируется и передаётся в хранилище как есть.
type ProductRef struct {
	raw json.RawMessage
}

func NewProductRef(raw json.RawMessage) ProductRef {
	return ProductRef{raw: append(json.RawMessage(nil), raw...)}
}

// UnmarshalJSON сохраняет исходный JSON-скаляр.
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	r.raw = append(r.raw[:0], data...)
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}

	return r.raw, nil
}

// IsZero сообщает, что идентификатор отсутствует или равен null.
func (r ProductRef) IsZero() bool {
	trimmed := bytes.TrimSpace(r.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// QueryArg возвращает значение для параметра запроса: строки и числа — их текст,
// null — nil, прочие значения — исходный JSON.
func (r ProductRef) QueryArg() any {
	if r.IsZero() {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(r.raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return string(r.raw)
	}

	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return string(bytes.TrimSpace(r.raw))
	}
}

// String — представление идентификатора для логов.
func (r ProductRef) String() string {
	if r.IsZero() {
		return "null"
	}

	return string(bytes.TrimSpace(r.raw))
}

// RecommendationRequest — запрос рекомендаций: ровно один идентификатор продукта.
type RecommendationRequest struct {
	ProductID ProductRef `json:"productId"`
}

func NewRecommendationRequest(id ProductRef) *RecommendationRequest {
	return &RecommendationRequest{ProductID: id}
}

// MatchParams — параметры поиска похожих продуктов. Константы, не настраиваются в рантайме.
type MatchParams struct {
	Threshold float64
	Count     int
}

const (
	DefaultMatchThreshold = 0.78
	DefaultMatchCount     = 5
)

func DefaultMatchParams() MatchParams {
	return MatchParams{
		Threshold: DefaultMatchThreshold,
		Count:     DefaultMatchCount,
	}
}
