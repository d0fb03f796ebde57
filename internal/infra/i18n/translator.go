package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// DefaultLang is served when the client asks for nothing we have.
const DefaultLang = "fr"

type Translator struct {
	lang         string
	translations map[string]string
}

func newTranslatorFromBytes(lang string, data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{lang: lang, translations: translations}, nil
}

// T returns the message for key, formatted with args. Unknown keys come back
// unchanged so a missing entry is visible on the page.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string { return t.lang }

// Catalog holds one Translator per locales/<lang>.yaml file.
type Catalog struct {
	byLang map[string]*Translator
}

// NewCatalog loads every locale in fsys. DefaultLang must be present.
func NewCatalog(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, err
	}
	c := &Catalog{byLang: map[string]*Translator{}}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", f, err)
		}
		lang := strings.TrimSuffix(path.Base(f), ".yaml")
		t, err := newTranslatorFromBytes(lang, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		c.byLang[lang] = t
	}
	if _, ok := c.byLang[DefaultLang]; !ok {
		return nil, fmt.Errorf("missing default locale %q", DefaultLang)
	}
	return c, nil
}

// MustCatalog loads the embedded locales.
func MustCatalog() *Catalog {
	c, err := NewCatalog(LocalesFS)
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the loaded locales, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.byLang))
	for l := range c.byLang {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// For picks the translator for an explicit lang or, failing that, the first
// supported entry of an Accept-Language header. q-values are ignored; order
// is taken as preference.
func (c *Catalog) For(lang, acceptLanguage string) *Translator {
	if t, ok := c.byLang[primary(lang)]; ok {
		return t
	}
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if t, ok := c.byLang[primary(tag)]; ok {
			return t
		}
	}
	return c.byLang[DefaultLang]
}

func primary(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}
