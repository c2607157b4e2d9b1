// Package mailtemplate renders the confirmation mail sent back to a submitter.
package mailtemplate

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
)

//go:embed confirm_mail_template.txt
var defaultTemplate string

// placeholder matches $$, $ident, ${ident} or a lone $
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\}|)`)

// Fields are the values a confirmation template can refer to
type Fields struct {
	ServiceName string
	SenderName  string
	SenderMail  string
	Subject     string
	Body        string
	SiteURL     string
	AdminMail   string
}

// Values maps f onto the placeholder names used in templates
func (f Fields) Values() map[string]string {
	return map[string]string{
		"name":        f.ServiceName,
		"sender_name": f.SenderName,
		"source":      f.SenderMail,
		"subject":     f.Subject,
		"body":        f.Body,
		"site_url":    f.SiteURL,
		"mail":        f.AdminMail,
	}
}

// Default returns the built in confirmation template
func Default() string {
	return defaultTemplate
}

// Load reads a template from path, or returns the built in one if path is empty
func Load(path string) (string, error) {

	if path == "" {
		return defaultTemplate, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read mail template: %w", err)
	}
	return string(b), nil
}

// Render substitutes values into tmpl. Placeholders without a value, and a $
// not followed by an identifier, are kept as written; $$ yields a single $.
func Render(tmpl string, values map[string]string) string {

	var sb strings.Builder
	last := 0

	for _, m := range placeholder.FindAllStringSubmatchIndex(tmpl, -1) {
		sb.WriteString(tmpl[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			sb.WriteByte('$')
		case m[4] >= 0:
			sb.WriteString(lookup(values, tmpl[m[4]:m[5]], tmpl[m[0]:m[1]]))
		case m[6] >= 0:
			sb.WriteString(lookup(values, tmpl[m[6]:m[7]], tmpl[m[0]:m[1]]))
		default:
			sb.WriteString(tmpl[m[0]:m[1]])
		}
	}
	sb.WriteString(tmpl[last:])

	return sb.String()
}

func lookup(values map[string]string, key, literal string) string {
	if v, ok := values[key]; ok {
		return v
	}
	return literal
}
