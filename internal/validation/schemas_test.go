package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_GameUpsert(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		valid   bool
	}{
		{
			name:    "valid payload",
			payload: `{"title": "Fraction Frenzy", "category": "Math", "difficulty": "medium", "estimated_time": 15, "xp_reward": 80}`,
			valid:   true,
		},
		{
			name:    "missing title",
			payload: `{"category": "Math", "difficulty": "medium", "estimated_time": 15, "xp_reward": 80}`,
			valid:   false,
		},
		{
			name:    "estimated time below minimum",
			payload: `{"title": "X", "category": "Math", "difficulty": "easy", "estimated_time": 0, "xp_reward": 10}`,
			valid:   false,
		},
		{
			name:    "unknown field rejected",
			payload: `{"title": "X", "category": "Math", "difficulty": "easy", "estimated_time": 10, "xp_reward": 10, "surprise": true}`,
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateGameUpsert(tt.payload)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
				assert.NotNil(t, result.ToAPIError())
			}
		})
	}
}

func TestSchemaValidator_Review(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.True(t, sv.ValidateReview(`{"quality": 0}`).Valid)
	assert.True(t, sv.ValidateReview(`{"quality": 5}`).Valid)
	assert.False(t, sv.ValidateReview(`{"quality": 6}`).Valid)
	assert.False(t, sv.ValidateReview(`{"quality": -1}`).Valid)
	assert.False(t, sv.ValidateReview(`{"quality": 3.5}`).Valid)
	assert.False(t, sv.ValidateReview(`{}`).Valid)
}

func TestSchemaValidator_AuthRequest(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.True(t, sv.ValidateAuthRequest(`{"user_id": "bb6a4a34-4b32-4cbe-9fc9-9b4be323a4f2", "user_tier": "premium"}`).Valid)
	assert.False(t, sv.ValidateAuthRequest(`{"user_tier": "premium"}`).Valid)
	assert.False(t, sv.ValidateAuthRequest(`{"user_id": "bb6a4a34-4b32-4cbe-9fc9-9b4be323a4f2", "user_tier": "enterprise"}`).Valid)
}
