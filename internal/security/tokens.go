package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or signed by another key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when an HMAC secret is empty.
	ErrWeakSecret = errors.New("token secret must not be empty")
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Subject identifies the user a token was issued to.
type Subject struct {
	UserID   int64
	Username string
	Email    string
}

// Claims holds the JWT claims shared by access and refresh tokens.
// Use distinguishes the two so one can never stand in for the other.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Use      string `json:"use"`
}

// keySet is the signing method and keys for one token kind.
type keySet struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

// TokenProvider issues and validates access and refresh JWTs. Tokens are signed with
// HS256 using separate secrets per kind, or with RS256/ES256 from a PEM key pair.
type TokenProvider struct {
	access     keySet
	refresh    keySet
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewHMACTokenProvider returns a TokenProvider signing access tokens with accessSecret
// and refresh tokens with refreshSecret (HS256).
func NewHMACTokenProvider(accessSecret, refreshSecret, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrWeakSecret
	}
	return &TokenProvider{
		access:     keySet{method: jwt.SigningMethodHS256, signKey: []byte(accessSecret), verifyKey: []byte(accessSecret)},
		refresh:    keySet{method: jwt.SigningMethodHS256, signKey: []byte(refreshSecret), verifyKey: []byte(refreshSecret)},
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// NewKeyPairTokenProvider returns a TokenProvider that signs both token kinds with the
// given private key (RS256 for RSA, ES256 for ECDSA P-256).
func NewKeyPairTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	var method jwt.SigningMethod
	switch KeyAlg(publicKey) {
	case "RS256":
		method = jwt.SigningMethodRS256
	case "ES256":
		method = jwt.SigningMethodES256
	default:
		return nil, ErrInvalidKey
	}
	ks := keySet{method: method, signKey: privateKey, verifyKey: publicKey}
	return &TokenProvider{
		access:     ks,
		refresh:    ks,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// AccessTTL returns the access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access JWT for s. Returns the token and its expiration time.
func (p *TokenProvider) IssueAccess(s Subject) (token string, expiresAt time.Time, err error) {
	return p.issue(p.access, useAccess, p.accessTTL, s)
}

// IssueRefresh issues a long-lived refresh JWT for s. Every call yields a distinct token
// (fresh jti), so its hash can bind exactly one live credential to the user.
func (p *TokenProvider) IssueRefresh(s Subject) (token string, expiresAt time.Time, err error) {
	return p.issue(p.refresh, useRefresh, p.refreshTTL, s)
}

func (p *TokenProvider) issue(ks keySet, use string, ttl time.Duration, s Subject) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(s.UserID, 10),
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: s.Username,
		Email:    s.Email,
		Use:      use,
	}
	token, err := jwt.NewWithClaims(ks.method, claims).SignedString(ks.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccess parses and validates an access token (signature, exp, iss, aud, use).
func (p *TokenProvider) ValidateAccess(token string) (Subject, error) {
	return p.validate(p.access, useAccess, token)
}

// ValidateRefresh parses and validates a refresh token (signature, exp, iss, aud, use).
// It does not check the stored hash; that is the caller's job.
func (p *TokenProvider) ValidateRefresh(token string) (Subject, error) {
	return p.validate(p.refresh, useRefresh, token)
}

func (p *TokenProvider) validate(ks keySet, use, tokenString string) (Subject, error) {
	if tokenString == "" {
		return Subject{}, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{ks.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	var claims Claims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return ks.verifyKey, nil
	})
	if err != nil || !token.Valid || claims.Use != use {
		return Subject{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Subject{}, ErrInvalidToken
	}
	return Subject{UserID: id, Username: claims.Username, Email: claims.Email}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
