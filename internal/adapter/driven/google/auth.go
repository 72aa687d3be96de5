package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuthProvider = (*Auth)(nil)

// Auth implements the AuthProvider port against Google's OAuth endpoints.
type Auth struct {
	cfg *oauth2.Config
}

// NewAuth creates an Auth around the given oauth2 configuration.
func NewAuth(cfg *oauth2.Config) *Auth {
	return &Auth{cfg: cfg}
}

// AuthCodeURL builds the consent URL. Offline access forces issuance of a
// refresh token; forced consent guarantees one even for an account that
// consented before.
func (a *Auth) AuthCodeURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the authorization code for tokens. The raw id_token, if
// Google attached one, rides along for identity resolution.
func (a *Auth) Exchange(ctx context.Context, code string) (model.TokenUpdate, string, error) {
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return model.TokenUpdate{}, "", fmt.Errorf("exchange authorization code: %w", err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	scope, _ := tok.Extra("scope").(string)

	return model.TokenUpdate{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        scope,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}, rawIDToken, nil
}

// ResolveIdentity resolves the account's email and name, preferring
// verified id_token claims and falling back to a userinfo lookup when no
// id_token is present or it fails verification.
func (a *Auth) ResolveIdentity(ctx context.Context, tokens model.TokenUpdate, rawIDToken string) (driven.Identity, error) {
	if rawIDToken != "" {
		payload, err := idtoken.Validate(ctx, rawIDToken, a.cfg.ClientID)
		if err == nil {
			email, _ := payload.Claims["email"].(string)
			name, _ := payload.Claims["name"].(string)
			if email != "" {
				return driven.Identity{Email: email, Name: name}, nil
			}
		} else {
			slog.Warn("id_token verification failed, falling back to userinfo", "error", err)
		}
	}

	if tokens.AccessToken == "" {
		return driven.Identity{}, errors.New("no access token for userinfo lookup")
	}

	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: tokens.AccessToken,
		TokenType:   tokens.TokenType,
	}))
	svc, err := oauth2v2.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return driven.Identity{}, fmt.Errorf("create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return driven.Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}

	return driven.Identity{Email: info.Email, Name: info.Name}, nil
}
