package auth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/playster/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type idTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseIDToken extracts an [models.Identity] from a Google ID token.
//
// The signature is not verified. The subject is required and the email claim, when present, becomes the
// account name. A non-empty audience must appear in the token's aud claim.
func ParseIDToken(raw, accountType, audience string) (models.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Identity{}, fmt.Errorf("%w: empty token", ErrInvalidIDToken)
	}

	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidIDToken)
	}

	if audience != "" && !slices.Contains(claims.Audience, audience) {
		return models.Identity{}, fmt.Errorf("%w: audience %v does not include %s", ErrInvalidIDToken, claims.Audience, audience)
	}

	name := strings.TrimSpace(claims.Email)
	if name == "" {
		name = sub
	}
	return models.NewIdentity(name, accountType), nil
}

// idTokenFrom returns the id_token extra of an OAuth token response.
func idTokenFrom(token *oauth2.Token) (string, bool) {
	if token == nil {
		return "", false
	}
	raw, ok := token.Extra("id_token").(string)
	return raw, ok && raw != ""
}
