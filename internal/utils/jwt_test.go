package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() TokenCodec {
	return TokenCodec{
		Secret: []byte("test-signing-key"),
		Issuer: "ecommerce",
	}
}

func TestAuthTokenReturnsUsername(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := codec.IssueAuthToken("usera")
	require.NoError(t, err)

	username, err := codec.ReadUsername(token)
	require.NoError(t, err)
	assert.Equal(t, "usera", username)
}

func TestVerificationTokenNotUsableForAuth(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := codec.IssueVerificationToken("usera@junit.com")
	require.NoError(t, err)

	username, err := codec.ReadUsername(token)
	require.NoError(t, err, "a verification token is not malformed, just useless for auth")
	assert.Empty(t, username, "verification token must not contain a username")
}

func TestAuthTokenNotUsableForVerification(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := codec.IssueAuthToken("usera")
	require.NoError(t, err)

	email, err := codec.ReadVerificationEmail(token)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestAuthTokenNotUsableForReset(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := codec.IssueAuthToken("usera")
	require.NoError(t, err)

	email, err := codec.ReadResetEmail(token)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestResetTokenRoundTrip(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := codec.IssueResetToken("usera@junit.com")
	require.NoError(t, err)

	email, err := codec.ReadResetEmail(token)
	require.NoError(t, err)
	assert.Equal(t, "usera@junit.com", email)
}

func TestTokenNotSignedByUs(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"USERNAME": "usera",
		"iss":      codec.Issuer,
		"exp":      jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("NotTheRealSecret"))
	require.NoError(t, err)

	_, err = codec.ReadUsername(foreign)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = codec.ReadResetEmail(foreign)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestCorrectlySignedWithoutIssuer(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"USERNAME": "usera",
		"exp":      jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(codec.Secret)
	require.NoError(t, err)

	_, err = codec.ReadUsername(token)
	assert.ErrorIs(t, err, ErrMalformedToken, "missing issuer means not our kind of token")
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestResetTokenWithoutIssuer(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"RESET_PASSWORD_EMAIL": "usera@junit.com",
		"exp":                  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(codec.Secret)
	require.NoError(t, err)

	_, err = codec.ReadResetEmail(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()

	expired := TokenCodec{
		Secret:       []byte("test-signing-key"),
		Issuer:       "ecommerce",
		AuthTokenTTL: -time.Minute,
	}
	token, err := expired.IssueAuthToken("usera")
	require.NoError(t, err)

	_, err = testCodec().ReadUsername(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestGarbageToken(t *testing.T) {
	t.Parallel()

	_, err := testCodec().ReadUsername("not.a.jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
