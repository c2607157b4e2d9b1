package inquiry

import (
	"encoding/base64"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/UKHomeOffice/inquirymail/internal/validate"
)

// fields are copied from the top level of a direct invocation
var fields = []string{"name", "email", "title", "message"}

// EventError means the invocation event could not be turned into a record
type EventError struct {
	Reason string
	Err    error
}

func (e *EventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Reason, e.Err)
	}
	return "malformed event: " + e.Reason
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// Normalize turns either an API Gateway proxy event (REST or HTTP API) or a
// direct invocation payload into a candidate record
func Normalize(event []byte) (validate.Record, error) {

	if !gjson.ValidBytes(event) {
		return nil, &EventError{Reason: "event is not valid JSON"}
	}
	ev := gjson.ParseBytes(event)
	if !ev.IsObject() {
		return nil, &EventError{Reason: "event is not a JSON object"}
	}

	body := ev.Get("body")
	if body.Exists() && body.Type != gjson.Null {
		return parseBody(body, ev.Get("isBase64Encoded").Bool())
	}

	r := validate.Record{}
	for _, f := range fields {
		v := ev.Get(f)
		if v.Exists() {
			r[f] = v.Value()
		}
	}
	return r, nil
}

// parseBody decodes the JSON document carried in a proxy event body
func parseBody(body gjson.Result, encoded bool) (validate.Record, error) {

	var doc string
	switch {
	case body.IsObject():
		// a test event may carry the body unencoded
		doc = body.Raw
	case body.Type == gjson.String:
		doc = body.Str
	default:
		return nil, &EventError{Reason: "body is neither a string nor an object"}
	}

	if encoded && body.Type == gjson.String {
		b, err := base64.StdEncoding.DecodeString(doc)
		if err != nil {
			return nil, &EventError{Reason: "could not decode base64 body", Err: err}
		}
		doc = string(b)
	}

	if !gjson.Valid(doc) {
		return nil, &EventError{Reason: "body is not valid JSON"}
	}
	m, ok := gjson.Parse(doc).Value().(map[string]interface{})
	if !ok {
		return nil, &EventError{Reason: "body is not a JSON object"}
	}
	return validate.Record(m), nil
}
