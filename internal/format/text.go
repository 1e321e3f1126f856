package format

import (
	"mime/multipart"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^\w-]+`)
	repeatedDashes = regexp.MustCompile(`--+`)
	titleWord      = regexp.MustCompile(`\w\S*`)
	upperLetter    = regexp.MustCompile(`([A-Z])`)
)

// Casers carry state and are not safe to share between goroutines.
func lower(s string) string { return cases.Lower(language.Und).String(s) }
func upper(s string) string { return cases.Upper(language.Und).String(s) }

// Slugify lower-cases s, turns spaces into dashes, drops everything that is
// not a word character or dash and squeezes repeated dashes.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	return repeatedDashes.ReplaceAllString(s, "-")
}

// Unslugify turns every dash back into a space.
func Unslugify(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}

// TitleCase capitalizes the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return titleWord.ReplaceAllStringFunc(s, func(w string) string {
		return upper(w[:1]) + lower(w[1:])
	})
}

// SentenceCase splits camelCase words on capitals and capitalizes the first
// character: "helloWorld" -> "Hello World".
func SentenceCase(s string) string {
	s = upperLetter.ReplaceAllString(s, " $1")
	return upperFirst(s)
}

// Initials returns the upper-cased first letter of every space-separated part.
func Initials(fullName string) string {
	var b strings.Builder
	for _, part := range strings.Split(fullName, " ") {
		if part == "" {
			continue
		}
		b.WriteString(upper(firstRune(part)))
	}
	return b.String()
}

// IsFileHeaders reports whether v is a slice made only of multipart file headers.
func IsFileHeaders(v any) bool {
	switch files := v.(type) {
	case []*multipart.FileHeader:
		for _, f := range files {
			if f == nil {
				return false
			}
		}
		return true
	case []any:
		for _, f := range files {
			if fh, ok := f.(*multipart.FileHeader); !ok || fh == nil {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func upperFirst(s string) string {
	r := firstRune(s)
	if r == "" {
		return s
	}
	return upper(r) + s[len(r):]
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
