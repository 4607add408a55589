// Package i18n resolves user language preferences and localizes the handful of
// UI strings the layout and renderers produce. Item names come from the
// catalog; this package covers labels such as tier headings and summaries.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
)

// Default is the fallback language.
const Default = "en"

var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

// Languages returns the supported language codes, default first.
func Languages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		base, _ := t.Base()
		out[i] = base.String()
	}
	return out
}

// Normalize validates lang and reduces it to a supported base code
// ("de-AT" becomes "de"). It fails for languages without a close match.
func Normalize(lang string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidLanguage, err, "parse language %q", lang)
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", perrors.New(perrors.ErrCodeInvalidLanguage, "unsupported language %q (supported: %v)", lang, Languages())
	}
	return Languages()[idx], nil
}

// Match picks the best supported language for an Accept-Language header or a
// POSIX locale such as "de_DE.UTF-8". It never fails; unmatched input yields
// [Default].
func Match(pref string) string {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return Default
	}
	if i := strings.IndexByte(pref, '.'); i > 0 && !strings.Contains(pref, ",") {
		pref = pref[:i]
	}
	pref = strings.ReplaceAll(pref, "_", "-")

	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Languages()[idx]
}

// Printer returns a message printer for lang. Unsupported codes fall back to
// [Default].
func Printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(supported[idx])
}

// Sprintf formats a UI message in lang.
func Sprintf(lang, key string, args ...any) string {
	return Printer(lang).Sprintf(key, args...)
}
