package pagination

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, time.February, 3, 14, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	token := EncodeCursor(cursor)
	parsed, err := ParseCursor(token)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, cursor.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, cursor.ID, parsed.ID)
}

func TestParseCursorEmptyMeansFirstPage(t *testing.T) {
	parsed, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorRejectsMalformedTokens(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"missing separator", "bm9zZXBhcmF0b3I"},
		{"bad timestamp", "bm90YXRpbWV8MTIzNA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCursor(tc.token)
			require.Error(t, err)
		})
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestLimitWithBuffer(t *testing.T) {
	assert.Equal(t, DefaultLimit+1, LimitWithBuffer(0))
	assert.Equal(t, 11, LimitWithBuffer(10))
	assert.Equal(t, MaxLimit+1, LimitWithBuffer(500))
}

func TestCursorJSONIsOpaqueToken(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}

	raw, err := json.Marshal(cursor)
	require.NoError(t, err)

	var token string
	require.NoError(t, json.Unmarshal(raw, &token))
	assert.Equal(t, EncodeCursor(cursor), token)

	var decoded Cursor
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}
