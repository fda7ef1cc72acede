package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/meister-web/internal/i18n"
)

const (
	ContextTranslator = "translator"
	LangCookie        = "lang"
)

// LanguageMiddleware picks the page language from ?lang=, the lang
// cookie, then Accept-Language. An explicit ?lang= is remembered.
func LanguageMiddleware(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("lang")
		cookie, _ := c.Cookie(LangCookie)

		lang := bundle.Match(c.GetHeader("Accept-Language"), query, cookie)
		if query != "" && query == lang && cookie != lang {
			c.SetCookie(LangCookie, lang, 365*24*3600, "/", "", false, false)
		}

		c.Set(ContextTranslator, bundle.Translator(lang))
		c.Next()
	}
}

// Translator is set by LanguageMiddleware.
func Translator(c *gin.Context) *i18n.Translator {
	if v, ok := c.Get(ContextTranslator); ok {
		if t, ok := v.(*i18n.Translator); ok {
			return t
		}
	}
	return i18n.MustLoad().Translator(i18n.DefaultLang)
}
