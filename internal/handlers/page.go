package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/meister-web/internal/httperr"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/middleware"
	"github.com/BruksfildServices01/meister-web/internal/timezone"
)

type languageLink struct {
	Code   string
	Label  string
	URL    string
	Active bool
}

// Pages renders every HTML page through the "base" layout.
type Pages struct {
	bundle *i18n.Bundle
}

func NewPages(bundle *i18n.Bundle) *Pages {
	return &Pages{bundle: bundle}
}

func (p *Pages) Render(c *gin.Context, status int, page string, data gin.H) {
	t := middleware.Translator(c)
	if data == nil {
		data = gin.H{}
	}

	data["Page"] = page
	data["T"] = t
	data["Lang"] = t.Lang()
	data["Path"] = c.Request.URL.Path
	data["Languages"] = p.languages(c, t)
	data["Year"] = timezone.Now().Year()
	if _, ok := data["Refresh"]; !ok {
		data["Refresh"] = false
	}

	if _, ok := data["Flash"]; !ok {
		if sess := middleware.CurrentSession(c); sess != nil {
			data["Flash"] = sess.TakeFlash()
		}
	}

	c.HTML(status, "base", data)
}

func (p *Pages) languages(c *gin.Context, t *i18n.Translator) []languageLink {
	links := make([]languageLink, 0, len(p.bundle.Languages()))
	for _, code := range p.bundle.Languages() {
		q := url.Values{"lang": {code}}
		links = append(links, languageLink{
			Code:   code,
			Label:  t.T("languageSwitcher.languages." + code),
			URL:    c.Request.URL.Path + "?" + q.Encode(),
			Active: code == t.Lang(),
		})
	}
	return links
}

// NotFound is the router fallback. It answers JSON callers in kind and everyone else with the page.
func (p *Pages) NotFound(c *gin.Context) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		httperr.NotFound(c, "not_found", "no such route")
		return
	}
	p.Render(c, http.StatusNotFound, "not_found", nil)
}

// redirect ends a form post on a GET page.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
