// Package renderer substitutes lead/signature placeholders into a
// template's subject and body. It is deliberately not built on
// text/template, html/template, or a templating-engine library: the
// contract only allows whole-token variable substitution, never
// conditionals, loops, or filters, so a small hand-rolled scanner is the
// right-sized tool.
package renderer

import (
	"html"
	"strings"

	"github.com/outreachcore/campaign-engine/internal/domain"
)

// Render substitutes {{first_name}}/{{company}} into the template's subject
// and body, then appends signatureHTML after a blank-paragraph separator.
// Subject substitution leaves values raw; body substitution HTML-escapes
// them. Unknown placeholders are left literal; empty values render empty.
func Render(tmpl domain.Template, lead domain.Lead, signatureHTML string) (subject string, bodyHTML string) {
	vars := map[string]string{
		"first_name": lead.FirstName,
		"company":    lead.Company,
	}

	subject = substitute(tmpl.Subject, vars, false)

	body := substitute(tmpl.BodyHTML, vars, true)
	if strings.TrimSpace(signatureHTML) != "" {
		body = body + "<p></p>" + signatureHTML
	}
	bodyHTML = body
	return subject, bodyHTML
}

// substitute scans s for {{token}} sequences containing no internal
// whitespace and replaces known tokens with their value, escaping it for
// HTML when escape is true. Anything else — malformed braces, unknown
// tokens, whitespace inside braces — is left untouched.
func substitute(s string, vars map[string]string, escape bool) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		start := strings.Index(s[i:], "{{")
		if start == -1 {
			b.WriteString(s[i:])
			break
		}
		start += i
		b.WriteString(s[i:start])

		end := strings.Index(s[start:], "}}")
		if end == -1 {
			b.WriteString(s[start:])
			break
		}
		end += start

		token := s[start+2 : end]
		value, ok := vars[token]
		if !ok || strings.ContainsAny(token, " \t\n\r") {
			b.WriteString(s[start : end+2])
			i = end + 2
			continue
		}
		if escape {
			b.WriteString(html.EscapeString(value))
		} else {
			b.WriteString(value)
		}
		i = end + 2
	}

	return b.String()
}
