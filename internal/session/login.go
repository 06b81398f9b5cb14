package session

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/eduard-w/songsMS/internal/apperr"
)

const (
	msgWrongArguments = "Wrong request arguments."
	msgMissingFields  = "fields 'userId' and 'password' must be defined"
	msgDeclined       = "Declined: User and password don't match or user doesn't exist!"
)

type LoginRequest struct {
	UserID   string
	Password string
}

// ParseLoginRequest validates a raw login payload. Payloads that try to
// carry profile fields are refused before any lookup.
func ParseLoginRequest(raw []byte) (LoginRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return LoginRequest{}, apperr.BadRequest(err.Error())
	}

	for key := range fields {
		switch strings.ToLower(key) {
		case "firstname", "lastname":
			return LoginRequest{}, apperr.BadRequest(msgWrongArguments)
		}
	}

	userID, okUser := stringField(fields, "userId")
	password, okPass := stringField(fields, "password")
	if !okUser || !okPass {
		return LoginRequest{}, apperr.BadRequest(msgMissingFields)
	}
	return LoginRequest{UserID: userID, Password: password}, nil
}

// stringField reads key as text. Numbers and booleans are taken verbatim
// as their JSON text; null, objects and arrays count as missing.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
