package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outreachcore/campaign-engine/internal/domain"
)

func TestRender_SubstitutesKnownTokens(t *testing.T) {
	tmpl := domain.Template{
		Subject:  "Hi {{first_name}}, quick one",
		BodyHTML: "<p>Hello {{first_name}} from {{company}}</p>",
	}
	lead := domain.Lead{FirstName: "Ada", Company: "Acme & Sons"}

	subject, body := Render(tmpl, lead, "")

	assert.Equal(t, "Hi Ada, quick one", subject)
	assert.Equal(t, "<p>Hello Ada from Acme &amp; Sons</p>", body)
}

func TestRender_EmptyValuesRenderEmpty(t *testing.T) {
	tmpl := domain.Template{Subject: "Hi {{first_name}}", BodyHTML: "<p>{{company}}</p>"}
	lead := domain.Lead{}

	subject, body := Render(tmpl, lead, "")

	assert.Equal(t, "Hi ", subject)
	assert.Equal(t, "<p></p>", body)
}

func TestRender_UnknownPlaceholderLeftLiteral(t *testing.T) {
	tmpl := domain.Template{Subject: "{{unknown_token}}", BodyHTML: "<p>{{unknown_token}}</p>"}
	lead := domain.Lead{FirstName: "Ada"}

	subject, body := Render(tmpl, lead, "")

	assert.Equal(t, "{{unknown_token}}", subject)
	assert.Equal(t, "<p>{{unknown_token}}</p>", body)
}

func TestRender_WhitespaceInsideBracesNotSubstituted(t *testing.T) {
	tmpl := domain.Template{Subject: "{{ first_name }}", BodyHTML: "body"}
	lead := domain.Lead{FirstName: "Ada"}

	subject, _ := Render(tmpl, lead, "")

	assert.Equal(t, "{{ first_name }}", subject)
}

func TestRender_AppendsSignatureAfterBlankParagraph(t *testing.T) {
	tmpl := domain.Template{Subject: "Hi", BodyHTML: "<p>Body</p>"}
	lead := domain.Lead{}

	_, body := Render(tmpl, lead, "<p>Thanks,<br>Ada</p>")

	assert.Equal(t, "<p>Body</p><p></p><p>Thanks,<br>Ada</p>", body)
}

func TestRender_NoSignatureWhenBlank(t *testing.T) {
	tmpl := domain.Template{Subject: "Hi", BodyHTML: "<p>Body</p>"}
	_, body := Render(tmpl, domain.Lead{}, "   ")
	assert.Equal(t, "<p>Body</p>", body)
}

func TestRender_UnterminatedBraceLeftAsIs(t *testing.T) {
	tmpl := domain.Template{Subject: "Hi {{first_name", BodyHTML: ""}
	subject, _ := Render(tmpl, domain.Lead{FirstName: "Ada"}, "")
	assert.Equal(t, "Hi {{first_name", subject)
}
