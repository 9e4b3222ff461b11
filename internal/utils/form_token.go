package utils // package utils provides helpers for signing and checking form tokens

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

// ErrInvalidFormToken is returned when a submitted form token is missing,
// expired, signed with another secret or bound to a different form, client
// or record.
var ErrInvalidFormToken = errors.New("invalid form token")

// FormToken is a signed token embedded as a hidden field in every HTML
// form.
type FormToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// FormBinding is what a token is issued for.  Nonce is the per-client
// value kept in the form nonce cookie; Subject names the record the form
// edits and is empty for forms that edit nothing.  A POST is accepted only
// when its token, its cookie and its target all match.
type FormBinding struct {
    Form    string
    Nonce   string
    Subject string
}

// formClaims carries the binding inside the JWT.
type formClaims struct {
    Form  string `json:"form"`
    Nonce string `json:"nonce"`
    jwt.RegisteredClaims
}

// NewFormToken signs an HS256 token for b that expires after ttl.  Each
// token carries a random jti so two renders of the same page never share
// a token.
func NewFormToken(secret string, b FormBinding, ttl time.Duration) (FormToken, error) {
    if b.Nonce == "" {
        return FormToken{}, fmt.Errorf("sign form token: empty nonce")
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := formClaims{
        Form:  b.Form,
        Nonce: b.Nonce,
        RegisteredClaims: jwt.RegisteredClaims{
            ID:        uuid.NewString(),
            Subject:   b.Subject,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return FormToken{}, fmt.Errorf("sign form token: %w", err)
    }
    return FormToken{Token: signed, Exp: exp}, nil
}

// VerifyFormToken checks raw against secret and b.  Any failure is
// reported as ErrInvalidFormToken.
func VerifyFormToken(secret string, b FormBinding, raw string) error {
    if raw == "" || b.Nonce == "" {
        return ErrInvalidFormToken
    }
    var claims formClaims
    _, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil {
        return fmt.Errorf("%w: %v", ErrInvalidFormToken, err)
    }
    switch {
    case claims.Form != b.Form:
        return fmt.Errorf("%w: issued for form %q", ErrInvalidFormToken, claims.Form)
    case claims.Nonce != b.Nonce:
        return fmt.Errorf("%w: issued to another client", ErrInvalidFormToken)
    case claims.Subject != b.Subject:
        return fmt.Errorf("%w: issued for record %q", ErrInvalidFormToken, claims.Subject)
    }
    return nil
}
