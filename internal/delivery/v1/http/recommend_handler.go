package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

const maxRequestBody = 1 << 20

type RecommendationHandler struct {
	recommendationUC usecase.RecommendationUC
	metrics          *Metrics
	strictStatus     bool
	logger           logger.Logger
}

func NewRecommendationHandler(recommendationUC usecase.RecommendationUC, metrics *Metrics, strictStatus bool, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationUC: recommendationUC,
		metrics:          metrics,
		strictStatus:     strictStatus,
		logger:           logger,
	}
}

// recommend
//
//	@Summary		Рекомендации похожих товаров
//	@Description	Ищет до 5 товаров, похожих на выбранный (порог сходства 0.78).
//	@Description	Ошибки возвращаются в поле error; по умолчанию со статусом 200.
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RecommendRequestDoc		true	"Идентификатор товара"
//	@Success		200		{object}	RecommendationsResponse	"Рекомендации"
//	@Failure		400		{object}	ErrorResponse			"Некорректный запрос (HTTP_STRICT_STATUS=true)"
//	@Failure		404		{object}	ErrorResponse			"Товар не найден (HTTP_STRICT_STATUS=true)"
//	@Failure		405		{object}	ErrorResponse			"Метод не поддерживается (HTTP_STRICT_STATUS=true)"
//	@Failure		502		{object}	ErrorResponse			"Ошибка хранилища (HTTP_STRICT_STATUS=true)"
//	@Router			/recommend [post]
func (h *RecommendationHandler) recommend(w http.ResponseWriter, r *http.Request) {
	var result usecase.RecommendationResult
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Errorf(fmt.Errorf("panic: %v", rec), "recommendation handler panicked")
			result = publicFailure(usecase.FailureUnexpected, e.ErrInternalServerError)
		}
		h.write(w, result)
	}()

	if r.Method != http.MethodPost {
		h.logger.Warnf("%s %s: %s", r.Method, r.URL.Path, e.ErrMethodNotAllowed.Error())
		result = publicFailure(usecase.FailureMethodNotAllowed, e.ErrMethodNotAllowed)
		return
	}

	req, err := decodeRecommendRequest(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		h.logger.Warnf("malformed recommendation request: %v", err)
		result = publicFailure(usecase.FailureMalformed, e.Wrap(e.ErrMalformedRequest.Error(), err))
		return
	}

	result = h.recommendationUC.Recommend(r.Context(), req)
}

// decodeRecommendRequest читает ровно одно JSON-значение.
// null вместо объекта и любые данные после него считаются некорректным запросом.
func decodeRecommendRequest(body io.Reader) (*domain.RecommendationRequest, error) {
	dec := json.NewDecoder(body)

	var req *domain.RecommendationRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, e.ErrNullBody
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = e.ErrTrailingData
		}
		return nil, err
	}

	return req, nil
}

func (h *RecommendationHandler) write(w http.ResponseWriter, result usecase.RecommendationResult) {
	switch res := result.(type) {
	case usecase.RecommendationSuccess:
		h.observe("success")
		WriteJSON(w, http.StatusOK, NewRecommendationsResponse(res.Items))
	case usecase.RecommendationFailure:
		h.observe(res.Kind.String())
		if res.Err != nil && res.Kind != usecase.FailureMethodNotAllowed && res.Kind != usecase.FailureMalformed {
			h.logger.Warnf("recommendation failed (%s): %v", res.Kind, res.Err)
		}
		WriteError(w, ToHTTPStatus(res.Kind, h.strictStatus), res.Message)
	default:
		h.observe(usecase.FailureUnexpected.String())
		WriteError(w, ToHTTPStatus(usecase.FailureUnexpected, h.strictStatus), e.ErrMalformedRequest.Error())
	}
}

func (h *RecommendationHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.Recommendations.WithLabelValues(outcome).Inc()
	}
}

// RecommendRequestDoc описывает тело запроса для документации.
type RecommendRequestDoc struct {
	ProductID any `json:"productId" swaggertype:"string" example:"1"`
}
