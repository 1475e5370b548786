package utils

import (
	"regexp"
)

type styleRule struct {
	re    *regexp.Regexp
	class string
}

// contentStyles maps CMS elements to the site's prose classes.
var contentStyles = []styleRule{
	{regexp.MustCompile(`<h2(\s[^>]*)?>`), "prose-h2"},
	{regexp.MustCompile(`<h3(\s[^>]*)?>`), "prose-h3"},
	{regexp.MustCompile(`<p(\s[^>]*)?>`), "prose-p"},
	{regexp.MustCompile(`<ul(\s[^>]*)?>`), "prose-list"},
	{regexp.MustCompile(`<ol(\s[^>]*)?>`), "prose-list prose-list-ordered"},
	{regexp.MustCompile(`<blockquote(\s[^>]*)?>`), "prose-quote"},
	{regexp.MustCompile(`<table(\s[^>]*)?>`), "table"},
	{regexp.MustCompile(`<pre(\s[^>]*)?>`), "prose-code"},
	{regexp.MustCompile(`<a(\s[^>]*)?>`), "link"},
}

var classAttr = regexp.MustCompile(`\sclass\s*=`)

// ProcessHTMLContent adds the prose classes to CMS content. Elements that
// already carry a class attribute are left alone.
func ProcessHTMLContent(content string) string {
	for _, rule := range contentStyles {
		content = rule.re.ReplaceAllStringFunc(content, func(tag string) string {
			if classAttr.MatchString(tag) {
				return tag
			}
			// insert before the closing bracket
			return tag[:len(tag)-1] + ` class="` + rule.class + `">`
		})
	}
	return content
}
