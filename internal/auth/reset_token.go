package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const resetTokenAudience = "password_reset"

// ErrInvalidResetToken はリセットトークンの署名・期限・用途が不正な場合に返される。
var ErrInvalidResetToken = errors.New("invalid reset token")

// resetClaims はリセットトークンのクレーム。
// Fingerprintは発行時点のパスワードハッシュから導出し、
// パスワード変更後はトークンが使えなくなる。
type resetClaims struct {
	Fingerprint string `json:"pwd"`
	jwt.RegisteredClaims
}

// ResetTokenIssuer はパスワードリセット用のトークンを発行・検証する。
type ResetTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenIssuer はResetTokenIssuerを生成する。
func NewResetTokenIssuer(secret string, ttl time.Duration) *ResetTokenIssuer {
	return &ResetTokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザーIDと現在のパスワードハッシュに紐づくトークンを発行する。
func (i *ResetTokenIssuer) Issue(userID, passwordHash string) (string, error) {
	now := i.now()
	claims := resetClaims{
		Fingerprint: passwordFingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{resetTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// Parse はトークンを検証し、ユーザーIDとフィンガープリントを返す。
// 検証に失敗した場合はErrInvalidResetTokenを返す。
func (i *ResetTokenIssuer) Parse(tokenStr string) (userID, fingerprint string, err error) {
	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetTokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidResetToken
	}
	if claims.Subject == "" || claims.Fingerprint == "" {
		return "", "", ErrInvalidResetToken
	}
	return claims.Subject, claims.Fingerprint, nil
}

// MatchesPassword はフィンガープリントが現在のパスワードハッシュと一致するかを返す。
func MatchesPassword(fingerprint, passwordHash string) bool {
	return fingerprint == passwordFingerprint(passwordHash)
}

func passwordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
