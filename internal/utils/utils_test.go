package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "1234", "consumer", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.SessionID)
	assert.Equal(t, "consumer", claims.Role)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", "1234", "consumer", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestHashCode(t *testing.T) {
	hash, err := HashCode("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckCode(hash, "123456"))
	assert.False(t, CheckCode(hash, "654321"))
}

func TestIDs(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	h1, h2 := NewHandoffToken(), NewHandoffToken()
	assert.Len(t, h1, 27)
	assert.NotEqual(t, h1, h2)
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 10}},
		{"?page=3&limit=25", Pagination{Page: 3, Limit: 25}},
		{"?page=-2&limit=0", Pagination{Page: 1, Limit: 10}},
		{"?page=abc&limit=1000", Pagination{Page: 1, Limit: 10}},
	}

	for _, tc := range cases {
		app := fiber.New()
		var got Pagination
		app.Get("/", func(c *fiber.Ctx) error {
			got = ParsePagination(c)
			return nil
		})
		_, err := app.Test(httptest.NewRequest("GET", "/"+tc.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "query %q", tc.query)
	}
}
