package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestReferralCodeFromStart(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"/start r_ABC234", "ABC234"},
		{"/start@greenqash_bot r_ABC234", "ABC234"},
		{"/start", ""},
		{"/start hello", ""},
		{"/tasks r_ABC234", ""},
		{"/start  r_XYZ ", "XYZ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ReferralCodeFromStart(tt.text), tt.text)
	}
}

func TestUserContext(t *testing.T) {
	assert.Nil(t, GetUser(context.Background()))

	user := &domain.User{ID: uuid.New()}
	assert.Same(t, user, GetUser(WithUser(context.Background(), user)))
}

func TestDescribeUpdate(t *testing.T) {
	tests := []struct {
		name       string
		update     *models.Update
		kind       string
		action     string
		telegramID int64
	}{
		{
			name:       "command with bot suffix and args",
			update:     &models.Update{Message: &models.Message{Text: "/code@greenqash_bot ABC234", From: &models.User{ID: 7}}},
			kind:       "command",
			action:     "/code",
			telegramID: 7,
		},
		{
			name:       "plain text",
			update:     &models.Update{Message: &models.Message{Text: "hello", From: &models.User{ID: 7}}},
			kind:       "message",
			telegramID: 7,
		},
		{
			name:       "claim callback",
			update:     &models.Update{CallbackQuery: &models.CallbackQuery{Data: "claim_" + uuid.NewString(), From: models.User{ID: 9}}},
			kind:       "callback",
			action:     "claim",
			telegramID: 9,
		},
		{
			name:   "other",
			update: &models.Update{},
			kind:   "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, action, telegramID := describeUpdate(tt.update)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.telegramID, telegramID)
		})
	}
}
