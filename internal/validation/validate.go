package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/sessions"
)

// GlobalKey collects errors that are not tied to a single field.
const GlobalKey = "_global"

// CSRFField is the form field carrying the CSRF token. It is stripped
// from the parameter set after verification.
const CSRFField = "csrf_token"

// Fatal conditions: these reject the request instead of being collected
// into the error map.
var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrBadCSRFToken  = errors.New("csrf token mismatch")
)

// Result is the outcome of request validation. At most one of Values
// and Errors is meaningfully non-empty for a submission; both are empty
// when the request method was not validated (e.g. the GET render of a
// shared GET/POST handler).
type Result struct {
	Values map[string]any
	Errors map[string]string
}

// Failed reports whether validation collected any errors.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Submitted reports whether any values or errors were produced, i.e.
// the request carried a validated submission.
func (r *Result) Submitted() bool {
	return len(r.Values) > 0 || len(r.Errors) > 0
}

// String returns a validated string value, or "".
func (r *Result) String(key string) string {
	v, _ := r.Values[key].(string)
	return v
}

// Int returns a validated int value, or def when absent.
func (r *Result) Int(key string, def int) int {
	if v, ok := r.Values[key].(int); ok {
		return v
	}
	return def
}

// Options configures one validation stage.
type Options struct {
	// Schema is the schema to validate against, if any.
	Schema *Schema

	// Validators maps individual parameter names to validators; usable
	// with or without a schema. Every field is attempted regardless of
	// the others' outcomes.
	Validators map[string]Validator

	// Methods lists the request methods that are validated. Requests with
	// other methods skip validation entirely. Defaults to POST only.
	// This also determines where parameters are read from: a single
	// method reads only that method's parameters, several methods read
	// the merged query and body parameters.
	Methods []string

	// SkipCSRF disables CSRF verification. By default POST submissions
	// must carry a csrf_token matching the session.
	SkipCSRF bool

	// AllowJSON enables parsing a JSON request body as the parameter
	// set when the content type indicates JSON. JSON submissions are
	// exempt from CSRF verification: header-authenticated clients do
	// not hold a session cookie.
	AllowJSON bool
}

func (o Options) methods() []string {
	if len(o.Methods) == 0 {
		return []string{http.MethodPost}
	}
	out := make([]string, len(o.Methods))
	for i, m := range o.Methods {
		out[i] = strings.ToUpper(m)
	}
	return out
}

// Run validates the request per the configured options. A non-nil error
// is fatal (unparseable JSON body or CSRF mismatch) and must reject the
// request; collected validation errors are returned inside the Result
// and never abort the request.
func (o Options) Run(r *http.Request) (*Result, error) {
	res := &Result{Values: map[string]any{}, Errors: map[string]string{}}

	methods := o.methods()
	if !containsString(methods, strings.ToUpper(r.Method)) {
		return res, nil
	}

	verifyCSRF := !o.SkipCSRF
	var params map[string]string

	switch {
	case o.AllowJSON && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			return nil, ErrMalformedBody
		}
		params = flattenJSON(doc)
		// Authorization headers stand in for CSRF tokens on JSON requests.
		verifyCSRF = false
	case len(methods) > 1:
		if err := r.ParseForm(); err != nil {
			return nil, ErrMalformedBody
		}
		params = flattenValues(r.Form)
	case methods[0] == http.MethodGet:
		params = flattenValues(r.URL.Query())
	default:
		if err := r.ParseForm(); err != nil {
			return nil, ErrMalformedBody
		}
		params = flattenValues(r.PostForm)
	}

	if verifyCSRF && r.Method == http.MethodPost {
		sess := sessions.FromContext(r.Context())
		if sess == nil || !sess.CheckCSRF(params[CSRFField]) {
			return nil, ErrBadCSRFToken
		}
		delete(params, CSRFField)
	}

	if o.Schema != nil {
		values, errs := o.Schema.Validate(params)
		for k, v := range values {
			res.Values[k] = v
		}
		for k, msg := range errs {
			res.Errors[k] = msg
		}
	}

	for field, validator := range o.Validators {
		coerced, err := validator.Validate(params[field])
		if err != nil {
			res.Errors[field] = err.Error()
			continue
		}
		res.Values[field] = coerced
	}

	return res, nil
}

// Handler is an http handler that also receives the validation outcome.
type Handler func(w http.ResponseWriter, r *http.Request, res *Result)

// Wrap runs validation ahead of the handler. Fatal conditions reject
// the request with 400. Validation errors never short-circuit: the
// handler always runs and is responsible for branching on res.Failed(),
// which is what lets one handler serve both the GET render and the POST
// submission of a form.
func Wrap(o Options, next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := o.Run(r)
		if err != nil {
			logger.Log.Errorw("request rejected by validation", "error", err, "method", r.Method, "uri", r.RequestURI)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		next(w, r, res)
	}
}

// flattenValues collapses url.Values to single values, keeping dotted
// field names as-is.
func flattenValues(values map[string][]string) map[string]string {
	params := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			params[key] = vs[0]
		}
	}
	return params
}

// flattenJSON collapses a decoded JSON object to a flat string map;
// nested objects become dotted keys ("profile.first_name"). Arrays and
// nulls are dropped.
func flattenJSON(doc map[string]any) map[string]string {
	params := make(map[string]string)
	flattenInto(params, "", doc)
	return params
}

func flattenInto(params map[string]string, prefix string, doc map[string]any) {
	for key, value := range doc {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			params[name] = v
		case float64:
			params[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			params[name] = strconv.FormatBool(v)
		case map[string]any:
			flattenInto(params, name, v)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
