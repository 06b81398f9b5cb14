package session

import (
	"testing"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoginRequest(t *testing.T) {
	req, err := ParseLoginRequest([]byte(`{"userId":"mmuster","password":"pass1234"}`))
	require.NoError(t, err)
	assert.Equal(t, LoginRequest{UserID: "mmuster", Password: "pass1234"}, req)
}

func TestParseLoginRequestScalars(t *testing.T) {
	tests := []struct {
		name string
		body string
		want LoginRequest
	}{
		{"numeric user id", `{"userId":123,"password":"x"}`, LoginRequest{UserID: "123", Password: "x"}},
		{"numeric password", `{"userId":"mmuster","password":1234}`, LoginRequest{UserID: "mmuster", Password: "1234"}},
		{"boolean password", `{"userId":"mmuster","password":true}`, LoginRequest{UserID: "mmuster", Password: "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLoginRequest([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLoginRequestRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"empty object", `{}`, msgMissingFields},
		{"missing password", `{"userId":"mmuster"}`, msgMissingFields},
		{"null password", `{"userId":"mmuster","password":null}`, msgMissingFields},
		{"object user id", `{"userId":{"id":"mmuster"},"password":"x"}`, msgMissingFields},
		{"array password", `{"userId":"mmuster","password":["pass1234"]}`, msgMissingFields},
		{"first name", `{"userId":"mmuster","password":"pass1234","firstName":"Maxime"}`, msgWrongArguments},
		{"last name any case", `{"LASTNAME":"Muster"}`, msgWrongArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoginRequest([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindBadRequest))
			assert.Equal(t, tt.msg, apperr.Body(err, false))
		})
	}
}

func TestParseLoginRequestInvalidJSON(t *testing.T) {
	_, err := ParseLoginRequest([]byte(`{"userId":`))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.NotEmpty(t, apperr.Body(err, false))
}
