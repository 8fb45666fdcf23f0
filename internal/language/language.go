package language

import (
	"errors"
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknown reports a value that is not a recognized language.
var ErrUnknown = errors.New("unknown language")

// bibliographic maps ISO 639-2/B codes to their terminology forms.
var bibliographic = map[string]string{
	"alb": "sqi", "arm": "hye", "baq": "eus", "bur": "mya", "chi": "zho",
	"cze": "ces", "dut": "nld", "fre": "fra", "geo": "kat", "ger": "deu",
	"gre": "ell", "ice": "isl", "mac": "mkd", "mao": "mri", "may": "msa",
	"per": "fas", "rum": "ron", "slo": "slk", "tib": "bod", "wel": "cym",
}

// named lists the languages recognized by English name.
var named = []string{
	"ar", "ca", "cs", "da", "de", "el", "en", "es", "fi", "fr", "he", "hi",
	"hu", "id", "it", "ja", "ko", "nl", "no", "pl", "pt", "ru", "sv", "th",
	"tr", "uk", "vi", "zh",
}

var byName map[string]xlanguage.Base

func init() {
	namer := display.English.Languages()
	byName = make(map[string]xlanguage.Base, len(named))
	for _, code := range named {
		base := xlanguage.MustParseBase(code)
		byName[strings.ToLower(namer.Name(base))] = base
	}
}

// Normalize returns the ISO 639-1 code for value, or the ISO 639-2 code when
// the language has no two-letter code. Empty input returns "".
func Normalize(value string) (string, error) {
	base, err := parse(value)
	if err != nil || base == (xlanguage.Base{}) {
		return "", err
	}
	return base.String(), nil
}

func parse(value string) (xlanguage.Base, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return xlanguage.Base{}, nil
	}
	if base, ok := byName[v]; ok {
		return base, nil
	}
	if alias, ok := bibliographic[v]; ok {
		v = alias
	}
	if len(v) == 2 || len(v) == 3 {
		if base, err := xlanguage.ParseBase(v); err == nil {
			return base, nil
		}
	}
	if strings.ContainsAny(v, "-_") {
		tag, err := xlanguage.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			if base, conf := tag.Base(); conf != xlanguage.No {
				return base, nil
			}
		}
	}
	return xlanguage.Base{}, fmt.Errorf("%w: %q", ErrUnknown, value)
}

// DisplayName returns the English name of code, or code itself when it is
// not recognized.
func DisplayName(code string) string {
	base, err := parse(code)
	if err != nil || base == (xlanguage.Base{}) {
		return strings.TrimSpace(code)
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return base.String()
}
