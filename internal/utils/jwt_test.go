package utils

import (
	"testing"
	"time"

	"bicarb-server/internal/config"
)

func TestLoginTokenRoundTrip(t *testing.T) {
	config.InitConfig(t.TempDir())

	token, err := GenerateLoginToken(42, "alice", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseLoginToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.IssuedAt == nil {
		t.Error("issued at must be set for session invalidation checks")
	}
}

func TestLoginTokenExpired(t *testing.T) {
	config.InitConfig(t.TempDir())

	token, err := GenerateLoginToken(42, "alice", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseLoginToken(token); err == nil {
		t.Error("expired token should not parse")
	}
}

func TestActionTokenTypeMismatch(t *testing.T) {
	config.InitConfig(t.TempDir())

	token, err := GenerateActionToken(7, TokenTypeEmailVerify, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseActionToken(token, TokenTypeEmailVerify); err != nil {
		t.Errorf("matching type should parse: %v", err)
	}
	if _, err := ParseActionToken(token, TokenTypePasswordReset); err == nil {
		t.Error("mismatched type must be rejected")
	}
	// 动作令牌不能当登录令牌用
	if _, err := ParseLoginToken(token); err == nil {
		t.Error("action token must not authenticate")
	}
}

func TestParseGarbageToken(t *testing.T) {
	config.InitConfig(t.TempDir())

	if _, err := ParseLoginToken("not.a.token"); err == nil {
		t.Error("garbage should not parse")
	}
}
