package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPaymentRequest_HasUserData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"object", `{"email":"a@b.in"}`, true},
		{"missing", ``, false},
		{"null", `null`, false},
		{"empty object", `{}`, false},
		{"string", `"hello"`, false},
		{"array", `[1,2]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := VerifyPaymentRequest{UserData: json.RawMessage(tt.raw)}
			assert.Equal(t, tt.want, r.HasUserData())
		})
	}
}

func TestUserContact_DisplayName(t *testing.T) {
	assert.Equal(t, "Asha Rao", UserContact{FullName: " Asha Rao ", Name: "asha"}.DisplayName())
	assert.Equal(t, "asha", UserContact{Name: "asha"}.DisplayName())
	assert.Equal(t, "asha.r", UserContact{Email: "asha.r@college.edu"}.DisplayName())
	assert.Equal(t, "Customer", UserContact{}.DisplayName())
}

func TestParseContact_Malformed(t *testing.T) {
	assert.Equal(t, UserContact{}, ParseContact([]byte("{not json")))
	assert.Equal(t, "a@b.in", ParseContact([]byte(`{"email":"a@b.in","extra":1}`)).Email)
}
