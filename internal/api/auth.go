package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/service"
)

var _ service.Authenticator = (*Client)(nil)

// tokenPaths are where auth responses have been seen to carry the token.
var tokenPaths = []string{"token", "accessToken", "data.token", "data.accessToken"}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return c.sessionFrom(body, email)
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return c.sessionFrom(body, email)
}

// Me returns the profile of the token's user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	if u := doc.Get("user"); u.IsObject() {
		doc = u
	} else if u := doc.Get("data"); u.IsObject() {
		doc = u
	}
	return &model.User{
		ID:    firstString(doc, "_id", "id"),
		Name:  doc.Get("name").String(),
		Email: doc.Get("email").String(),
		Role:  doc.Get("role").String(),
	}, nil
}

func (c *Client) sessionFrom(body []byte, email string) (*model.Session, error) {
	doc := gjson.ParseBytes(body)
	token := firstString(doc, tokenPaths...)
	if token == "" {
		return nil, fmt.Errorf("auth response carried no token: %w", common.ErrRemoteAPI)
	}
	if e := firstString(doc, "user.email", "data.user.email"); e != "" {
		email = e
	}

	session := &model.Session{
		Token:   token,
		Email:   email,
		SavedAt: c.now(),
	}
	if exp, err := TokenExpiry(token); err == nil {
		session.ExpiresAt = exp
	} else {
		slog.Debug("token expiry unavailable", "error", err)
	}
	return session, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The zero time is returned for tokens without exp.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.Type != gjson.Null {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
