package skiptoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrInvalid is returned for tokens that cannot be decoded.
	ErrInvalid = errors.New("invalid skip token")
	// ErrMismatch is returned when a token was issued for different query options.
	ErrMismatch = errors.New("skip token does not match the query")
)

// SkipToken represents the state needed to resume a search
type SkipToken struct {
	// Skip is the number of matches already returned
	Skip int `json:"s"`
	// Query identifies the $filter and $orderby the token was issued for
	Query uint64 `json:"q"`
}

// QueryHash identifies a combination of $filter and $orderby text.
func QueryHash(filter, orderby string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(filter)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(orderby)
	return d.Sum64()
}

// New returns a token resuming the given query after skip matches.
func New(skip int, filter, orderby string) *SkipToken {
	return &SkipToken{Skip: skip, Query: QueryHash(filter, orderby)}
}

// Encode encodes a skip token into a base64-encoded JSON string
func Encode(token *SkipToken) (string, error) {
	if token == nil {
		return "", fmt.Errorf("token cannot be nil")
	}

	jsonBytes, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes), nil
}

// Decode decodes a base64-encoded JSON string into a SkipToken
func Decode(encoded string) (*SkipToken, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: token cannot be empty", ErrInvalid)
	}

	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode token: %w", ErrInvalid, err)
	}

	var token SkipToken
	if err := json.Unmarshal(jsonBytes, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal token: %w", ErrInvalid, err)
	}
	if token.Skip < 0 {
		return nil, fmt.Errorf("%w: negative skip %d", ErrInvalid, token.Skip)
	}
	return &token, nil
}

// Resume decodes a token and checks it was issued for filter and orderby.
func Resume(encoded, filter, orderby string) (*SkipToken, error) {
	token, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	if token.Query != QueryHash(filter, orderby) {
		return nil, ErrMismatch
	}
	return token, nil
}
