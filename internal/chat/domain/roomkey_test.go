package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoomKey_CanonicalOrder(t *testing.T) {
	a, err := NewRoomKey("prod-42", []string{"seller-9", "buyer-1"})
	assert.NoError(t, err)
	b, err := NewRoomKey("prod-42", []string{"buyer-1", "seller-9"})
	assert.NoError(t, err)

	// participant order must not matter
	assert.Equal(t, a.Encode(), b.Encode())
	assert.Equal(t, "chat:prod-42:buyer-1:seller-9", a.Encode())
}

func TestNewRoomKey_DedupsParticipants(t *testing.T) {
	k, err := NewRoomKey("prod-42", []string{"buyer-1", "seller-9", "buyer-1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"buyer-1", "seller-9"}, k.Participants)
}

func TestNewRoomKey_Rejections(t *testing.T) {
	_, err := NewRoomKey("", []string{"a", "b"})
	assert.Error(t, err)

	_, err = NewRoomKey("prod:42", []string{"a", "b"})
	assert.Error(t, err)

	_, err = NewRoomKey("prod-42", []string{"a", "b:c"})
	assert.Error(t, err)

	_, err = NewRoomKey("prod-42", []string{"a", ""})
	assert.Error(t, err)

	// two copies of the same member collapse below the minimum
	_, err = NewRoomKey("prod-42", []string{"a", "a"})
	assert.Error(t, err)
}

func TestParseRoomKey_RoundTrip(t *testing.T) {
	k, err := NewRoomKey("prod-42", []string{"seller-9", "buyer-1"})
	assert.NoError(t, err)

	parsed, err := ParseRoomKey(k.Encode())
	assert.NoError(t, err)
	assert.Equal(t, k, parsed)
}

func TestParseRoomKey_Rejections(t *testing.T) {
	cases := []string{
		"",
		"chat",
		"chat:prod-42",
		"chat:prod-42:only-one",
		"room:prod-42:a:b",
		"chat-prod-42-a-b",
	}
	for _, c := range cases {
		_, err := ParseRoomKey(c)
		assert.Error(t, err, c)
	}
}

func TestRoomKey_Has(t *testing.T) {
	k, _ := NewRoomKey("prod-42", []string{"buyer-1", "seller-9"})
	assert.True(t, k.Has("buyer-1"))
	assert.True(t, k.Has("seller-9"))
	assert.False(t, k.Has("intruder"))
}
