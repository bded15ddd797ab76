package server

import (
	"context"
	"net/http"
	"strconv"

	"remila_sections/internal/content"
	"remila_sections/internal/domain"
)

type lister func(ctx context.Context, c *content.Client, q domain.Query) any

func listOf[T any]() lister {
	return func(ctx context.Context, c *content.Client, q domain.Query) any {
		return content.List[T](ctx, c, q)
	}
}

var listers = map[domain.Collection]lister{
	domain.CollectionNews:             listOf[domain.NewsItem](),
	domain.CollectionJudges:           listOf[domain.Judge](),
	domain.CollectionMainPrizes:       listOf[domain.Prize](),
	domain.CollectionAdditionalPrizes: listOf[domain.Prize](),
	domain.CollectionFAQs:             listOf[domain.FAQ](),
	domain.CollectionWorkExamples:     listOf[domain.WorkExample](),
	domain.CollectionSponsors:         listOf[domain.Sponsor](),
	domain.CollectionResources:        listOf[domain.Resource](),
	domain.CollectionSiteSettings:     listOf[domain.SiteSettings](),
}

// listContent serves GET /api/v1/content/{collection}. Backend failures
// still answer 200 with the error carried in the body.
func (s *Server) listContent(w http.ResponseWriter, r *http.Request) {
	c := domain.Collection(r.PathValue("collection"))
	list, ok := listers[c]
	if !ok {
		ErrorResponse(w, http.StatusNotFound, "unknown collection: "+c.String())
		return
	}
	info, _ := c.Info()

	q := domain.Query{
		Collection: c,
		SiteSlug:   r.URL.Query().Get("siteSlug"),
		Category:   r.URL.Query().Get("category"),
	}
	if q.SiteSlug == "" {
		ErrorResponse(w, http.StatusBadRequest, "siteSlug is required")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative whole number")
			return
		}
		q.Limit = n
	}
	if q.Category != "" && !info.Category {
		ErrorResponse(w, http.StatusBadRequest, "category is not supported by "+c.String())
		return
	}

	JSONResponse(w, http.StatusOK, list(r.Context(), s.content, q))
}

func (s *Server) getPrizes(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("siteSlug")
	if slug == "" {
		ErrorResponse(w, http.StatusBadRequest, "siteSlug is required")
		return
	}
	JSONResponse(w, http.StatusOK, s.content.GetPrizes(r.Context(), slug))
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("siteSlug")
	if slug == "" {
		ErrorResponse(w, http.StatusBadRequest, "siteSlug is required")
		return
	}
	JSONResponse(w, http.StatusOK, s.content.GetSiteSettings(r.Context(), slug))
}
