package i18n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

const DefaultLang = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

var supported = []language.Tag{language.English, language.German}

// Bundle holds every embedded locale, flattened to dotted keys.
type Bundle struct {
	messages map[string]map[string]string
	lists    map[string]map[string][]string
	matcher  language.Matcher
}

// Load parses the embedded locale files.
func Load() (*Bundle, error) {
	b := &Bundle{
		messages: map[string]map[string]string{},
		lists:    map[string]map[string][]string{},
		matcher:  language.NewMatcher(supported),
	}

	for _, tag := range supported {
		lang := tag.String()
		raw, err := localeFS.ReadFile(path.Join("locales", lang+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", lang, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", lang, err)
		}
		msgs := map[string]string{}
		lists := map[string][]string{}
		flatten("", tree, msgs, lists)
		b.messages[lang] = msgs
		b.lists[lang] = lists
	}
	return b, nil
}

// MustLoad panics when the embedded locales are broken.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func flatten(prefix string, node map[string]any, msgs map[string]string, lists map[string][]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, msgs, lists)
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			lists[key] = items
		case nil:
		default:
			msgs[key] = fmt.Sprint(val)
		}
	}
}

// Supported reports whether lang has its own locale file.
func (b *Bundle) Supported(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// Languages returns the supported language codes in display order.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}

// Match resolves the first explicit choice that is supported, then the
// Accept-Language header, then DefaultLang.
func (b *Bundle) Match(acceptLanguage string, explicit ...string) string {
	for _, lang := range explicit {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if b.Supported(lang) {
			return lang
		}
	}
	if acceptLanguage == "" {
		return DefaultLang
	}
	tag, _ := language.MatchStrings(b.matcher, acceptLanguage)
	base, _ := tag.Base()
	if b.Supported(base.String()) {
		return base.String()
	}
	return DefaultLang
}

// Translator returns a lookup bound to lang, falling back to DefaultLang.
func (b *Bundle) Translator(lang string) *Translator {
	if !b.Supported(lang) {
		lang = DefaultLang
	}
	return &Translator{
		lang:         lang,
		messages:     b.messages[lang],
		fallback:     b.messages[DefaultLang],
		lists:        b.lists[lang],
		fallbackList: b.lists[DefaultLang],
	}
}

type Translator struct {
	lang         string
	messages     map[string]string
	fallback     map[string]string
	lists        map[string][]string
	fallbackList map[string][]string
}

func (t *Translator) Lang() string {
	return t.lang
}

// T looks key up and interpolates {{name}} placeholders. vars are
// name/value pairs. A missing key returns the key itself.
func (t *Translator) T(key string, vars ...any) string {
	msg, ok := t.messages[key]
	if !ok {
		msg, ok = t.fallback[key]
	}
	if !ok {
		return key
	}
	return interpolate(msg, vars)
}

// Has reports whether key exists in either the bound or fallback locale.
func (t *Translator) Has(key string) bool {
	if _, ok := t.messages[key]; ok {
		return true
	}
	_, ok := t.fallback[key]
	return ok
}

func (t *Translator) List(key string) []string {
	if l, ok := t.lists[key]; ok {
		return l
	}
	return t.fallbackList[key]
}

// Weekdays returns short weekday names, Monday first.
func (t *Translator) Weekdays() []string {
	return t.List("weekdaysShort")
}

func (t *Translator) MonthName(m time.Month) string {
	months := t.List("months")
	if int(m) < 1 || int(m) > len(months) {
		return m.String()
	}
	return months[m-1]
}

func (t *Translator) WeekdayName(d calendar.Date) string {
	days := t.List("weekdays")
	idx := d.MondayIndex()
	if idx >= len(days) {
		return d.Weekday().String()
	}
	return days[idx]
}

// LongDate renders d as a full localized date.
func (t *Translator) LongDate(d calendar.Date) string {
	if d.IsZero() {
		return ""
	}
	tm := d.Time()
	return t.T("formats.longDate",
		"weekday", t.WeekdayName(d),
		"day", tm.Day(),
		"month", t.MonthName(tm.Month()),
		"year", tm.Year(),
	)
}

// MonthTitle renders the month containing d, e.g. "June 2025".
func (t *Translator) MonthTitle(d calendar.Date) string {
	tm := d.Time()
	return t.T("formats.monthTitle", "month", t.MonthName(tm.Month()), "year", tm.Year())
}

func interpolate(msg string, vars []any) string {
	if len(vars) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	pairs := make([]string, 0, len(vars))
	for i := 0; i+1 < len(vars); i += 2 {
		name := fmt.Sprint(vars[i])
		pairs = append(pairs, "{{"+name+"}}", stringify(vars[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
