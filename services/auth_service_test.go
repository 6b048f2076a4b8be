package services

import (
	"testing"

	"eventhub-api/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuth_RegisterHostAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.store, "jwt-secret")

	resp, err := auth.Register(env.ctx, RegisterRequest{
		Name:     "Hana Host",
		Email:    "Hana@Example.com",
		Password: "s3cret!",
		Role:     "host",
		Bio:      "Board games every week",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != models.RoleHost || resp.Host == nil || resp.Host.UserID != resp.User.ID {
		t.Fatalf("host registration incomplete: %+v", resp)
	}
	if resp.User.Email != "hana@example.com" {
		t.Errorf("email = %q, want lower case", resp.User.Email)
	}

	login, err := auth.Login(env.ctx, LoginRequest{Email: "hana@example.com", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := jwt.Parse(login.Token, func(*jwt.Token) (interface{}, error) { return []byte("jwt-secret"), nil })
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"] != resp.User.ID || claims["role"] != "HOST" {
		t.Errorf("unexpected claims %v", claims)
	}
}

func TestAuth_Rejections(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.store, "jwt-secret")

	if _, err := auth.Register(env.ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := auth.Register(env.ctx, RegisterRequest{Name: "B", Email: "A@example.com", Password: "secret1"})
	assertKind(t, err, KindBadRequest)

	_, err = auth.Register(env.ctx, RegisterRequest{Name: "C", Email: "c@example.com", Password: "secret1", Role: "ADMIN"})
	assertKind(t, err, KindBadRequest)

	_, err = auth.Login(env.ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	assertKind(t, err, KindUnauthorized)

	_, err = auth.Login(env.ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assertKind(t, err, KindUnauthorized)
}
