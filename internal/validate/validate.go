// Package validate checks an inquiry record before anything is sent.
package validate

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Record is a candidate inquiry as decoded from an invocation event
type Record map[string]interface{}

// Inquiry is a record which passed validation
type Inquiry struct {
	Name    string
	Email   string
	Title   string
	Message string

	// Record is the validated input, unknown keys included
	Record Record
}

// Error lists every violation found in a record, keyed by field name
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: [%s]", k, strings.Join(e.Fields[k], ", ")))
	}
	return "invalid inquiry: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// rule is the constraint set of one field
type rule struct {
	field string
	tags  []string
}

var rules = []rule{
	{field: "name", tags: []string{"max=40"}},
	{field: "email", tags: []string{"max=193", "mailaddr"}},
	{field: "title", tags: []string{"max=80"}},
	{field: "message", tags: []string{"max=10000"}},
}

var v = newValidator()

// hosts checks mail domains. It is separate from v, whose mailaddr tag would
// otherwise refer back to it during package initialization.
var hosts = validator.New()

func newValidator() *validator.Validate {
	nv := validator.New()
	if err := nv.RegisterValidation("mailaddr", isMailAddr); err != nil {
		panic(err)
	}
	return nv
}

// isMailAddr accepts a bare local@domain address. Display names and angle
// brackets are refused.
func isMailAddr(fl validator.FieldLevel) bool {
	return IsMailAddress(fl.Field().String())
}

// IsMailAddress reports whether s is a syntactically valid addr-spec whose
// domain is a fully qualified host name of at least two labels, none of them
// starting or ending with a hyphen. Deliverability is not checked.
func IsMailAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at < 1 {
		return false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	if err := hosts.Var(domain, "fqdn"); err != nil {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}

// message renders a failed tag the way callers log it
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return "max length is " + fe.Param()
	case "mailaddr":
		return "is not mail address."
	default:
		return "failed " + fe.Tag()
	}
}

// Validate checks every field of r and reports all violations together.
// The returned Inquiry keeps r as given.
func Validate(r Record) (*Inquiry, error) {

	verr := &Error{}
	values := make(map[string]string, len(rules))

	for _, ru := range rules {
		raw, ok := r[ru.field]
		if !ok {
			verr.add(ru.field, "required field")
			continue
		}
		s, ok := raw.(string)
		if !ok {
			verr.add(ru.field, "must be of string type")
			continue
		}

		// each tag on its own so that every broken constraint is listed
		valid := true
		for _, tag := range ru.tags {
			err := v.Var(s, tag)
			if err == nil {
				continue
			}
			fes, ok := err.(validator.ValidationErrors)
			if !ok {
				return nil, fmt.Errorf("could not validate %s: %w", ru.field, err)
			}
			for _, fe := range fes {
				verr.add(ru.field, message(fe))
			}
			valid = false
		}
		if valid {
			values[ru.field] = s
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	return &Inquiry{
		Name:    values["name"],
		Email:   values["email"],
		Title:   values["title"],
		Message: values["message"],
		Record:  r,
	}, nil
}
