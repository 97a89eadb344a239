package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple city", "Москва", "moskva"},
		{"hyphenated", "Санкт-Петербург", "sankt-peterburg"},
		{"two words", "Нижний Новгород", "nizhnij-novgorod"},
		{"multi hyphen", "Ростов-на-Дону", "rostov-na-donu"},
		{"soft sign dropped", "Пермь", "perm"},
		{"yo folds to e", "Королёв", "korolev"},
		{"shcha", "Щёлково", "schelkovo"},
		{"hard sign dropped", "Подъячево", "podyachevo"},
		{"latin passes", "Roses 25", "roses-25"},
		{"punctuation dropped", "«Город» (N)!", "gorod-n"},
		{"collapse and trim", "  --Уфа--  ", "ufa"},
		{"em dash", "Юг — Север", "yug-sever"},
		{"underscore and dot", "a_b.c/d", "a-b-c-d"},
		{"decomposed input", "Корол\u0435\u0308в", "korolev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slugify(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, slugPattern, got)
			assert.True(t, Valid(got))
		})
	}
}

func TestSlugifyInvalidName(t *testing.T) {
	for _, in := range []string{"", "   ", "!!!", "---", "ъь", "★"} {
		t.Run(in, func(t *testing.T) {
			_, err := Slugify(in)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryInvalidName))
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	first := MustSlugify("Екатеринбург")
	for range 100 {
		assert.Equal(t, first, MustSlugify("Екатеринбург"))
	}
}

func TestMustSlugifyPanics(t *testing.T) {
	assert.Panics(t, func() { MustSlugify("?") })
}

func TestTableCoversAlphabet(t *testing.T) {
	for r := 'а'; r <= 'я'; r++ {
		_, ok := translit[r]
		assert.True(t, ok, "missing %q", r)
	}
	_, ok := translit['ё']
	assert.True(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("moskva"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("-a"))
	assert.False(t, Valid("a--b"))
	assert.False(t, Valid("Москва"))
}
