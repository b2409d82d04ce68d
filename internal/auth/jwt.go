package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(token string) (model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	var orgID uuid.UUID
	if claims.OrgID != "" {
		if orgID, err = uuid.Parse(claims.OrgID); err != nil {
			return model.Principal{}, fmt.Errorf("%w: bad org_id", ErrInvalidToken)
		}
	}

	role := model.UserRole(strings.ToLower(claims.Role))
	switch role {
	case model.UserRoleAdmin, model.UserRoleContractManager, model.UserRoleViewer:
	default:
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return model.Principal{
		UserID: userID,
		OrgID:  orgID,
		Role:   role,
		Name:   claims.Name,
	}, nil
}

// Issue signs a token for principal. Used by tests and the CLI.
func (p *Parser) Issue(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = principal.UserID.String()
	c := Claims{
		Role:             string(principal.Role),
		Name:             principal.Name,
		RegisteredClaims: claims,
	}
	if principal.OrgID != uuid.Nil {
		c.OrgID = principal.OrgID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}
