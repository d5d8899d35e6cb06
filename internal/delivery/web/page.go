package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/jimlawless/whereami"
)

//go:embed templates/*.html
var templatesFS embed.FS

const productParam = "product"

// Page — HTML-страница: список товаров и рекомендации для выбранного.
// Выбранный товар передаётся в параметре ?product=<id>. Список товаров строится
// на каждый запрос, представление рекомендаций живёт в сессии.
type Page struct {
	title    string
	lister   ProductLister
	sessions *sessions
	logger   logger.Logger
	tmpl     *template.Template
}

func NewPage(title string, lister ProductLister, fetcher RecommendationFetcher, logger logger.Logger) (*Page, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/page.html")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Page{
		title:    title,
		lister:   lister,
		sessions: newSessions(fetcher, logger),
		logger:   logger,
		tmpl:     tmpl,
	}, nil
}

// stateView — представление ViewState для шаблона.
type stateView struct {
	Status Status
	Items  []domain.Product
	Reason string
}

func (s stateView) IsIdle() bool   { return s.Status == StatusIdle }
func (s stateView) IsLoaded() bool { return s.Status == StatusLoaded }
func (s stateView) IsFailed() bool { return s.Status == StatusFailed }

func newStateView(st ViewState[[]domain.Product]) stateView {
	items, _ := st.Data()
	return stateView{Status: st.Status(), Items: items, Reason: st.Reason()}
}

type pageData struct {
	Title           string
	Selected        string
	Products        stateView
	Recommendations stateView
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recommendations := p.sessions.recommendations(w, r)
	products := NewProductListView(p.lister, func(id domain.ProductID) {
		recommendations.SetProductID(ctx, id.String())
	}, p.logger)

	productState := products.Load(ctx)

	selected := r.URL.Query().Get(productParam)
	recommendationState := Idle[[]domain.Product]()
	if selected != "" {
		products.Select(domain.ParseProductID(selected))
		recommendationState = recommendations.State()
	}

	data := pageData{
		Title:           p.title,
		Selected:        selected,
		Products:        newStateView(productState),
		Recommendations: newStateView(recommendationState),
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		p.logger.Errorf(err, "failed to render page")
		http.Error(w, e.ErrInternalServerError.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
