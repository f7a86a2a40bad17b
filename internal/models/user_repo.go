package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

// UserRepo proxies account operations to the identity provider. Tokens it
// returns are verified later by the auth middleware.
type UserRepo interface {
	CreateUser(ctx context.Context, req *SignupRequest) (interface{}, error)
	AuthenticateUser(ctx context.Context, email, password string) (interface{}, error)
	RefreshToken(ctx context.Context, refreshToken string) (interface{}, error)
}

var ErrEmailInUse = fmt.Errorf("email already in use")

func (su *SupabaseRepo) CreateUser(ctx context.Context, req *SignupRequest) (interface{}, error) {
	signup := types.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data:     map[string]interface{}{"full_name": req.FullName},
	}

	res, err := su.supabaseClient.Auth.Signup(signup)
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "already registered") || strings.Contains(errMsg, "unique constraint") {
			return nil, ErrEmailInUse
		}
		if strings.Contains(errMsg, "invalid input syntax") {
			return nil, fmt.Errorf("invalid input format")
		}
		return nil, fmt.Errorf("failed to create user")
	}
	return res, nil
}

func (su *SupabaseRepo) AuthenticateUser(ctx context.Context, email, password string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return resp, nil
}
