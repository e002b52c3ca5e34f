package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrVerificationFailed means the token is forged, malformed or signed
	// with a different secret. Maps to 401.
	ErrVerificationFailed = errors.New("token verification failed")
	// ErrTokenExpired means the token is authentic but past its expiry.
	// Maps to 403, never 401.
	ErrTokenExpired = errors.New("token expired")
)

// AccessTokenPayload is the claim set carried inside an access token.
type AccessTokenPayload struct {
	UserID    int64
	ExpiresAt int64 // unix seconds, UTC
}

// accessClaims is the wire format. The expiry lives in a custom "expr"
// claim rather than the registered "exp", so the JWT library verifies the
// signature only and expiry stays a separate policy decision.
type accessClaims struct {
	UserID    int64 `json:"id"`
	ExpiresAt int64 `json:"expr"`
	jwt.RegisteredClaims
}

// TokenService encodes, decodes and validates HS256 access tokens.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// IssueAccessToken stamps a fresh expiry and returns the signed token
// together with its expiry timestamp.
func (s *TokenService) IssueAccessToken(userID int64) (string, int64, error) {
	payload := AccessTokenPayload{
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(s.accessTTL).Unix(),
	}
	token, err := s.Encode(payload)
	if err != nil {
		return "", 0, err
	}
	return token, payload.ExpiresAt, nil
}

// Encode signs the payload with HS256.
func (s *TokenService) Encode(payload AccessTokenPayload) (string, error) {
	claims := accessClaims{
		UserID:    payload.UserID,
		ExpiresAt: payload.ExpiresAt,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode verifies the signature and returns the payload. It deliberately
// does not check expiry; use Validate for that.
func (s *TokenService) Decode(tokenString string) (AccessTokenPayload, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return AccessTokenPayload{}, ErrVerificationFailed
	}

	return AccessTokenPayload{UserID: claims.UserID, ExpiresAt: claims.ExpiresAt}, nil
}

// Validate rejects payloads whose expiry has passed. Second resolution, UTC.
func (s *TokenService) Validate(payload AccessTokenPayload) error {
	if s.now().UTC().Unix() > payload.ExpiresAt {
		return ErrTokenExpired
	}
	return nil
}

// Authenticate is the full pipeline: decode then validate. The two error
// kinds stay distinct so callers can map them to different statuses.
func (s *TokenService) Authenticate(tokenString string) (int64, error) {
	payload, err := s.Decode(tokenString)
	if err != nil {
		return 0, err
	}
	if err := s.Validate(payload); err != nil {
		return 0, err
	}
	return payload.UserID, nil
}
