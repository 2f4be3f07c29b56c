// Package response writes OData JSON payloads for the search endpoint.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const (
	ODataVersionValue  = "4.01"
	HeaderODataVersion = "OData-Version"
	ContentTypeJSON    = "application/json;odata.metadata=minimal"
)

// SetODataVersionHeader sets the OData-Version header with the correct capitalization.
func SetODataVersionHeader(w http.ResponseWriter) {
	w.Header()[HeaderODataVersion] = []string{ODataVersionValue}
}

// Collection is the JSON body of a search result page.
type Collection struct {
	Count    *int64      `json:"@odata.count,omitempty"`
	NextLink string      `json:"@odata.nextLink,omitempty"`
	Value    interface{} `json:"value"`
}

// ODataErrorDetail represents an additional error detail in an OData error response.
type ODataErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// ODataError represents the OData v4 compliant error structure.
type ODataError struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Target  string             `json:"target,omitempty"`
	Details []ODataErrorDetail `json:"details,omitempty"`
}

// ErrorCode returns the OData error code for an HTTP status, the status text
// without spaces (e.g. "BadRequest").
func ErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return strconv.Itoa(status)
	}
	return strings.ReplaceAll(text, " ", "")
}

// WriteError writes an OData error response. Every non-empty detail becomes
// an entry of error.details.
func WriteError(w http.ResponseWriter, status int, message string, details ...string) error {
	odataErr := &ODataError{
		Code:    ErrorCode(status),
		Message: message,
	}
	for _, d := range details {
		if d != "" {
			odataErr.Details = append(odataErr.Details, ODataErrorDetail{Message: d})
		}
	}
	return WriteODataError(w, status, odataErr)
}

// WriteErrorWithTarget writes an OData error naming the offending query option.
func WriteErrorWithTarget(w http.ResponseWriter, status int, message, target string, details ...string) error {
	odataErr := &ODataError{
		Code:    ErrorCode(status),
		Message: message,
		Target:  target,
	}
	for _, d := range details {
		if d != "" {
			odataErr.Details = append(odataErr.Details, ODataErrorDetail{Message: d, Target: target})
		}
	}
	return WriteODataError(w, status, odataErr)
}

// WriteODataError writes an OData v4 compliant error response with full error structure.
func WriteODataError(w http.ResponseWriter, httpStatusCode int, odataError *ODataError) error {
	return writeJSON(w, httpStatusCode, map[string]interface{}{"error": odataError})
}

// WriteCollection writes a result page with status 200.
func WriteCollection(w http.ResponseWriter, c *Collection) error {
	if c.Value == nil {
		c.Value = []interface{}{}
	}
	return writeJSON(w, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	SetODataVersionHeader(w)
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(body)
}

// BuildBaseURL returns scheme and host of the request, honouring
// X-Forwarded-Proto.
func BuildBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if host == "" {
		host = "localhost:8080"
	}

	var b strings.Builder
	b.Grow(len(scheme) + 3 + len(host))
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	return b.String()
}

// BuildNextLink returns the request URL with $skip removed and $skiptoken
// set to token.
func BuildNextLink(r *http.Request, token string) string {
	nextURL := *r.URL
	query := nextURL.Query()
	query.Del("$skip")
	query.Set("$skiptoken", token)
	nextURL.RawQuery = query.Encode()

	return BuildBaseURL(r) + nextURL.Path + "?" + nextURL.RawQuery
}
