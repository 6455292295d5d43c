// Package qr issues signed vehicle-link tokens and renders them as QR
// images. The QR printed on a vehicle encodes a verification URL carrying
// an HS256 token, so a scanned code proves the listing came from this
// platform rather than a lookalike page.
package qr

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrInvalidToken is returned for tokens that are expired, malformed,
// signed with a different secret, or not vehicle-link tokens at all.
var ErrInvalidToken = errors.New("invalid vehicle link token")

// NewLinkToken signs a vehicle-link token. Claims: sub carries the vehicle
// id, typ marks the token purpose so it cannot be replayed elsewhere.
func NewLinkToken(secret string, vehicleID int64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(vehicleID, 10),
		"typ": "vehicle",
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseLinkToken validates a token and returns the vehicle id it refers to.
func ParseLinkToken(secret, raw string) (int64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "vehicle" {
		return 0, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// VerifyURL builds the URL a scanned QR code opens.
func VerifyURL(baseURL, token string) string {
	return fmt.Sprintf("%s/verify?token=%s", baseURL, token)
}

// PNG renders the verification URL for a vehicle as a QR code image.
func PNG(secret, baseURL string, vehicleID int64, ttl time.Duration, size int) ([]byte, error) {
	token, err := NewLinkToken(secret, vehicleID, ttl)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(VerifyURL(baseURL, token), qrcode.Medium, size)
}
