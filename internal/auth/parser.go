package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	UserID int64 `json:"user_id"`
	OrgID  int64 `json:"org_id"`
	jwt.RegisteredClaims
}

// Parser validates HS256 access tokens issued by the identity service.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenStr string) (model.Principal, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return model.Principal{}, ErrMissingToken
	}
	if len(p.secret) == 0 {
		return model.Principal{}, errors.New("jwt secret is empty")
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !tok.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	if claims.OrgID <= 0 {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{UserID: claims.UserID, OrgID: claims.OrgID}, nil
}

// Sign issues a token for principal. Used by tooling and tests.
func (p *Parser) Sign(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           principal.UserID,
		OrgID:            principal.OrgID,
		RegisteredClaims: claims,
	})
	return tok.SignedString(p.secret)
}
