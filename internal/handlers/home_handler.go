package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
)

type BarberLister interface {
	ListBarbers(ctx context.Context) ([]backend.Barber, error)
}

type ReviewSource interface {
	Get(ctx context.Context, lang string) (*backend.Reviews, error)
}

type teamMember struct {
	ID       int
	Name     string
	Photo    string
	BookURL  string
	BookText string
}

type reviewItem struct {
	Author    string
	Stars     int
	Text      string
	Time      string
	SourceURL string
}

type reviewsView struct {
	Rating     string
	TotalLabel string
	Items      []reviewItem
}

type HomeHandler struct {
	pages   *Pages
	barbers BarberLister
	reviews ReviewSource
	log     *zap.Logger
}

func NewHomeHandler(pages *Pages, barbers BarberLister, reviews ReviewSource, log *zap.Logger) *HomeHandler {
	return &HomeHandler{
		pages:   pages,
		barbers: barbers,
		reviews: reviews,
		log:     log,
	}
}

// Show loads the team and the reviews side by side. Either section is
// hidden on its own when its fetch fails.
func (h *HomeHandler) Show(c *gin.Context) {
	t := middleware.Translator(c)

	var (
		barbers    []backend.Barber
		barbersErr error
		reviews    *backend.Reviews
		reviewsErr error
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		barbers, barbersErr = h.barbers.ListBarbers(ctx)
		return nil
	})
	g.Go(func() error {
		reviews, reviewsErr = h.reviews.Get(ctx, t.Lang())
		return nil
	})
	_ = g.Wait()

	if barbersErr != nil {
		h.log.Warn("home: load barbers failed", zap.Error(barbersErr))
	}
	if reviewsErr != nil {
		h.log.Warn("home: load reviews failed", zap.Error(reviewsErr))
	}

	team := make([]teamMember, 0, len(barbers))
	for _, b := range barbers {
		if !b.IsActive {
			continue
		}
		name := strings.TrimSpace(b.Name)
		m := teamMember{
			ID:       b.ID,
			Name:     name,
			BookURL:  "/booking?barber=" + strconv.Itoa(b.ID),
			BookText: t.T("home.team.book", "name", name),
		}
		if b.Photo != nil {
			m.Photo = *b.Photo
		}
		team = append(team, m)
	}

	data := gin.H{
		"Team":         team,
		"ReviewsError": reviewsErr != nil,
	}
	if reviews != nil {
		data["Reviews"] = buildReviews(reviews, t.T("home.reviews.totalLabel", "count", reviews.UserRatingCount))
	}

	h.pages.Render(c, http.StatusOK, "home", data)
}

func buildReviews(r *backend.Reviews, totalLabel string) reviewsView {
	view := reviewsView{
		Rating:     fmt.Sprintf("%.1f", r.Rating),
		TotalLabel: totalLabel,
		Items:      make([]reviewItem, 0, len(r.Reviews)),
	}
	for _, rv := range r.Reviews {
		item := reviewItem{
			Author: rv.AuthorName,
			Stars:  int(rv.Rating + 0.5),
			Text:   rv.Text,
			Time:   rv.Time,
		}
		if rv.SourceURL != nil {
			item.SourceURL = *rv.SourceURL
		}
		view.Items = append(view.Items, item)
	}
	return view
}
