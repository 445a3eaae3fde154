package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken covers tokens that are not ours: unparseable
	// strings, unexpected signing methods, expired tokens and tokens
	// without our issuer claim.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSignature is kept distinct because a wrong signature on an
	// otherwise well-formed token may indicate tampering.
	ErrBadSignature = errors.New("token signature mismatch")
)

// Claim names are disjoint per purpose. A token minted for one purpose
// structurally cannot satisfy a reader built for another.
const (
	claimUsername          = "USERNAME"
	claimVerificationEmail = "VERIFICATION_EMAIL"
	claimResetEmail        = "RESET_PASSWORD_EMAIL"
)

// TokenCodec mints and reads the three token purposes used by the identity
// service: session auth, email verification and password reset.
type TokenCodec struct {
	Secret        []byte
	Issuer        string
	AuthTokenTTL  time.Duration
	ResetTokenTTL time.Duration
}

// IssueAuthToken embeds the username under the auth claim.
func (c TokenCodec) IssueAuthToken(username string) (string, error) {
	return c.signedToken(jwt.MapClaims{claimUsername: username}, c.authTTL())
}

// IssueVerificationToken embeds the account email under the verification
// claim. It never carries the username claim used by auth tokens.
func (c TokenCodec) IssueVerificationToken(email string) (string, error) {
	return c.signedToken(jwt.MapClaims{claimVerificationEmail: email}, c.authTTL())
}

// IssueResetToken embeds the account email under the reset claim.
func (c TokenCodec) IssueResetToken(email string) (string, error) {
	return c.signedToken(jwt.MapClaims{claimResetEmail: email}, c.resetTTL())
}

// ReadUsername decodes an auth token. A valid token of another purpose
// yields an empty username and no error: such a token is unusable for
// authentication but is not malformed.
func (c TokenCodec) ReadUsername(token string) (string, error) {
	claims, err := c.decode(token)
	if err != nil {
		return "", err
	}
	username, _ := claims[claimUsername].(string)
	return username, nil
}

// ReadVerificationEmail decodes a verification token, symmetric to
// ReadUsername.
func (c TokenCodec) ReadVerificationEmail(token string) (string, error) {
	claims, err := c.decode(token)
	if err != nil {
		return "", err
	}
	email, _ := claims[claimVerificationEmail].(string)
	return email, nil
}

// ReadResetEmail decodes a password-reset token, symmetric to ReadUsername.
func (c TokenCodec) ReadResetEmail(token string) (string, error) {
	claims, err := c.decode(token)
	if err != nil {
		return "", err
	}
	email, _ := claims[claimResetEmail].(string)
	return email, nil
}

func (c TokenCodec) signedToken(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["iss"] = c.Issuer
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

func (c TokenCodec) decode(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrBadSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	issuer, err := claims.GetIssuer()
	if err != nil || issuer != c.Issuer {
		// Missing or foreign issuer means "not a token of this kind",
		// not a tampered one.
		return nil, fmt.Errorf("%w: issuer claim missing or unknown", ErrMalformedToken)
	}
	return claims, nil
}

func (c TokenCodec) authTTL() time.Duration {
	if c.AuthTokenTTL != 0 {
		return c.AuthTokenTTL
	}
	return 24 * time.Hour
}

func (c TokenCodec) resetTTL() time.Duration {
	if c.ResetTokenTTL != 0 {
		return c.ResetTokenTTL
	}
	return 30 * time.Minute
}
