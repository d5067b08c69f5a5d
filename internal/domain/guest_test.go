package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGuest_Validation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		first   string
		last    string
		email   string
		phone   string
		wantErr bool
	}{
		{name: "success", first: "Ada", last: "Lovelace", email: "ada@example.com"},
		{name: "success with phone", first: "Ada", last: "Lovelace", email: "ada@example.com", phone: "+44 20 7946 0958"},
		{name: "blank first name", first: " ", last: "Lovelace", email: "ada@example.com", wantErr: true},
		{name: "blank last name", first: "Ada", last: "", email: "ada@example.com", wantErr: true},
		{name: "blank email", first: "Ada", last: "Lovelace", email: "", wantErr: true},
		{name: "malformed email", first: "Ada", last: "Lovelace", email: "not-an-email", wantErr: true},
		{name: "email without domain dot", first: "Ada", last: "Lovelace", email: "ada@host", wantErr: true},
		{name: "phone too short", first: "Ada", last: "Lovelace", email: "ada@example.com", phone: "12345", wantErr: true},
		{name: "phone without digits", first: "Ada", last: "Lovelace", email: "ada@example.com", phone: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGuest("ev-1", nil, tt.first, tt.last, tt.email, tt.phone, "GB", now)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidInput))
				require.Nil(t, g)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, g.ID)
			require.Equal(t, "ev-1", g.EventID)
		})
	}
}

func TestNewGuest_NormalizesEmail(t *testing.T) {
	now := time.Now()
	g, err := NewGuest("ev-1", nil, "Ada", "Lovelace", "  Ada@Example.COM ", "", "GB", now)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", g.Email)
}

func TestNewGuest_LinkedUser(t *testing.T) {
	now := time.Now()
	userID := "user-1"
	g, err := NewGuest("ev-1", &userID, "Ada", "Lovelace", "ada@example.com", "", "GB", now)
	require.NoError(t, err)
	require.NotNil(t, g.UserID)
	require.Equal(t, "user-1", *g.UserID)
}
