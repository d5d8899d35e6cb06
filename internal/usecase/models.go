package usecase

import "github.com/DRSN-tech/product-recommender/internal/domain"

// RECOMMENDATIONS

// FailureKind — класс ошибки обработки запроса рекомендаций.
type FailureKind int

const (
	FailureUnexpected FailureKind = iota
	FailureMethodNotAllowed
	FailureMalformed
	FailureNotFound
	FailureLookup
	FailureMatch
)

func (k FailureKind) String() string {
	switch k {
	case FailureMethodNotAllowed:
		return "method_not_allowed"
	case FailureMalformed:
		return "malformed"
	case FailureNotFound:
		return "not_found"
	case FailureLookup:
		return "lookup"
	case FailureMatch:
		return "match"
	default:
		return "unexpected"
	}
}

// RecommendationResult — результат запроса рекомендаций:
// либо RecommendationSuccess, либо RecommendationFailure.
type RecommendationResult interface {
	isRecommendationResult()
}

// RecommendationSuccess — найденные продукты в порядке убывания сходства.
type RecommendationSuccess struct {
	Items []domain.Product
}

// RecommendationFailure — ошибка с сообщением, которое можно отдать клиенту.
type RecommendationFailure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (RecommendationSuccess) isRecommendationResult() {}
func (RecommendationFailure) isRecommendationResult() {}

func (f RecommendationFailure) Error() string {
	if f.Err != nil {
		return f.Err.Error()
	}

	return f.Message
}

// EMBEDDINGS

// RefreshEmbeddingsRes — итог пересчёта эмбеддингов.
type RefreshEmbeddingsRes struct {
	Updated int
	Indexed int
}

// MAPPERS

func NewRecommendationSuccess(items []domain.Product) RecommendationSuccess {
	if items == nil {
		items = []domain.Product{}
	}

	return RecommendationSuccess{Items: items}
}

func NewRecommendationFailure(kind FailureKind, message string, err error) RecommendationFailure {
	return RecommendationFailure{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NewRefreshEmbeddingsRes(updated, indexed int) *RefreshEmbeddingsRes {
	return &RefreshEmbeddingsRes{
		Updated: updated,
		Indexed: indexed,
	}
}
