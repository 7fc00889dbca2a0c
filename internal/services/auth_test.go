package services

import (
	"net/http"
	"testing"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/config"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/utils"
)

func init() {
	utils.SetJWTSecret("auth-service-test-secret")
}

func TestLogin_Success(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})
	user := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	result, err := svc.Login(&LoginRequest{Email: user.Email, Password: "password123"}, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Name != "Dana Dev" || claims.Role != models.RoleDeveloper {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestLogin_Failures(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})
	user := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "wrong"}, "", "")
	wantStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "password123"}, "", "")
	wantStatus(t, err, http.StatusUnauthorized)

	db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)
	_, err = svc.Login(&LoginRequest{Email: user.Email, Password: "password123"}, "", "")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})
	user := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	login, err := svc.Login(&LoginRequest{Email: user.Email, Password: "password123"}, "", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token should rotate")
	}

	// The old token is now revoked; replaying it fails.
	_, err = svc.Refresh(login.RefreshToken, "", "")
	wantStatus(t, err, http.StatusUnauthorized)

	// The new one still works.
	if _, err := svc.Refresh(refreshed.RefreshToken, "", ""); err != nil {
		t.Errorf("rotated token should refresh: %v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})

	_, err := svc.Refresh("not-a-token", "", "")
	wantStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Refresh("", "", "")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRevokeRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})
	user := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	login, err := svc.Login(&LoginRequest{Email: user.Email, Password: "password123"}, "", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	_, err = svc.Refresh(login.RefreshToken, "", "")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestCreateAdminIfNotExists(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	// Idempotent.
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin, got %d", count)
	}
}
