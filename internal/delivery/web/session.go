package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	sessionCookie = "rec_session"
	sessionTTL    = 30 * time.Minute
	maxSessions   = 10_000
)

// sessions хранит по одному RecommendationListView на браузерную сессию,
// чтобы новый выбор товара отменял запрос, ещё не завершившийся для предыдущего.
type sessions struct {
	fetcher RecommendationFetcher
	logger  logger.Logger

	mu    sync.Mutex
	views *expirable.LRU[string, *RecommendationListView]
}

func newSessions(fetcher RecommendationFetcher, logger logger.Logger) *sessions {
	return &sessions{
		fetcher: fetcher,
		logger:  logger,
		views:   expirable.NewLRU[string, *RecommendationListView](maxSessions, nil, sessionTTL),
	}
}

// recommendations возвращает представление сессии из cookie, создавая сессию при необходимости.
func (s *sessions) recommendations(w http.ResponseWriter, r *http.Request) *RecommendationListView {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if view, ok := s.views.Get(id); ok {
			return view
		}
	} else {
		id = uuid.NewString()
	}

	view := NewRecommendationListView(s.fetcher, s.logger)
	s.views.Add(id, view)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return view
}

func (s *sessions) Len() int {
	return s.views.Len()
}
