package service

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy = newRichTextPolicy()

	markdownImageRe = regexp.MustCompile(`(!\[[^\]]*\])\((/[^/)][^)]*)\)`)
	htmlSrcRe       = regexp.MustCompile(`(src=["'])(/[^/"'][^"']*)`)
)

// optional trims s and maps blank values to nil
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// newRichTextPolicy is the UGC policy plus the text-align styles the admin
// editor writes on blocks.
func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles("text-align").
		MatchingEnum("left", "center", "right", "justify").
		OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
	return p
}

// sanitizeRichText strips unsafe HTML from user-authored text. Plain markdown
// without tags is left as is so blockquotes and entities survive.
func sanitizeRichText(s *string) *string {
	s = optional(s)
	if s == nil || !strings.Contains(*s, "<") {
		return s
	}
	out := strings.TrimSpace(ugcPolicy.Sanitize(*s))
	if out == "" {
		return nil
	}
	return &out
}

// urlRewriter makes site-relative URLs absolute for public responses
type urlRewriter struct {
	base string
}

func newURLRewriter(base string) urlRewriter {
	return urlRewriter{base: strings.TrimRight(base, "/")}
}

func (u urlRewriter) absolute(s string) string {
	if u.base == "" || !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return s
	}
	return u.base + s
}

func (u urlRewriter) url(s *string) *string {
	if s == nil {
		return nil
	}
	v := u.absolute(*s)
	return &v
}

func (u urlRewriter) text(s *string) *string {
	if s == nil || u.base == "" {
		return s
	}
	v := markdownImageRe.ReplaceAllString(*s, "${1}("+u.base+"${2})")
	v = htmlSrcRe.ReplaceAllString(v, "${1}"+u.base+"${2}")
	return &v
}
