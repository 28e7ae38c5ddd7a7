package document

// LangText is a natural-language value: either a single string in an ambient
// language, or a map from language tag to localized string.
type LangText struct {
	shape Shape
	text  string
	langs []string
	texts map[string]string
}

// Text returns a Simple natural-language value.
func Text(s string) *LangText {
	return &LangText{shape: ShapeSimple, text: s}
}

// Shape returns the wire shape of the value.
func (t *LangText) Shape() Shape {
	return t.shape
}

// Text returns the string of a Simple value.
func (t *LangText) Text() string {
	if t.shape != ShapeSimple {
		shapeMismatch("LangText.Text", ShapeSimple, t.shape)
	}
	return t.text
}

// Languages returns the language tags of an Object value in insertion order.
func (t *LangText) Languages() []string {
	if t.shape != ShapeObject {
		shapeMismatch("LangText.Languages", ShapeObject, t.shape)
	}
	out := make([]string, len(t.langs))
	copy(out, t.langs)
	return out
}

// Get returns the localized string for lang of an Object value.
func (t *LangText) Get(lang string) (string, bool) {
	if t.shape != ShapeObject {
		shapeMismatch("LangText.Get", ShapeObject, t.shape)
	}
	s, ok := t.texts[lang]
	return s, ok
}

// Best returns a displayable string for either shape: the Simple text, the
// entry for lang when present, or the first entry of the map.
func (t *LangText) Best(lang string) string {
	if t.shape == ShapeSimple {
		return t.text
	}
	if s, ok := t.texts[lang]; ok {
		return s
	}
	if len(t.langs) > 0 {
		return t.texts[t.langs[0]]
	}
	return ""
}

// Equal reports whether two values have the same shape and entries.
// Language map order is not significant.
func (t *LangText) Equal(other *LangText) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.shape != other.shape {
		return false
	}
	if t.shape == ShapeSimple {
		return t.text == other.text
	}
	if len(t.texts) != len(other.texts) {
		return false
	}
	for lang, s := range t.texts {
		if o, ok := other.texts[lang]; !ok || o != s {
			return false
		}
	}
	return true
}

// LangTextBuilder accumulates language → string entries.
// Setting the same language twice keeps the latest string at the original position.
type LangTextBuilder struct {
	langs []string
	texts map[string]string
}

// NewLangTextBuilder returns an empty builder.
func NewLangTextBuilder() *LangTextBuilder {
	return &LangTextBuilder{texts: make(map[string]string)}
}

// Set records s for lang.
func (b *LangTextBuilder) Set(lang, s string) *LangTextBuilder {
	if _, ok := b.texts[lang]; !ok {
		b.langs = append(b.langs, lang)
	}
	b.texts[lang] = s
	return b
}

// Build returns the Object value.
func (b *LangTextBuilder) Build() *LangText {
	langs := make([]string, len(b.langs))
	copy(langs, b.langs)
	texts := make(map[string]string, len(b.texts))
	for k, v := range b.texts {
		texts[k] = v
	}
	return &LangText{shape: ShapeObject, langs: langs, texts: texts}
}
