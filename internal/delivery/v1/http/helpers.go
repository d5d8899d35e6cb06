package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/e"
)

// ErrorResponse — тело ответа при любой ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecommendationsResponse — тело успешного ответа /api/recommend.
type RecommendationsResponse struct {
	Recommendations []domain.Product `json:"recommendations"`
}

// ProductsResponse — тело ответа /api/products.
type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

func NewRecommendationsResponse(items []domain.Product) *RecommendationsResponse {
	if items == nil {
		items = []domain.Product{}
	}

	return &RecommendationsResponse{Recommendations: items}
}

func NewProductsResponse(products []domain.Product) *ProductsResponse {
	if products == nil {
		products = []domain.Product{}
	}

	return &ProductsResponse{Products: products}
}

// ToHTTPStatus возвращает код ответа для класса ошибки.
// В совместимом режиме (strict = false) все ответы отдаются с кодом 200.
func ToHTTPStatus(kind usecase.FailureKind, strict bool) int {
	if !strict {
		return http.StatusOK
	}

	switch kind {
	case usecase.FailureMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case usecase.FailureMalformed:
		return http.StatusBadRequest
	case usecase.FailureNotFound:
		return http.StatusNotFound
	case usecase.FailureLookup, usecase.FailureMatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicFailure возвращает результат для ошибок, возникших до обращения к хранилищу.
func publicFailure(kind usecase.FailureKind, err error) usecase.RecommendationFailure {
	msg := e.ErrMalformedRequest.Error()
	if kind == usecase.FailureMethodNotAllowed {
		msg = e.ErrMethodNotAllowed.Error()
	}

	return usecase.NewRecommendationFailure(kind, msg, err)
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, NewErrorResponse(message))
}
