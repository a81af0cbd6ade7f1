package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
)

func withLogin(t *testing.T, fn func(context.Context, string, string) (*services.Account, error)) {
	t.Helper()
	prevLogin, prevToken := loginFunc, generateTokenFunc
	loginFunc = fn
	generateTokenFunc = func(id uint, email, accountType, role string, _ time.Duration) (string, error) {
		return "token-for-" + accountType, nil
	}
	t.Cleanup(func() {
		loginFunc = prevLogin
		generateTokenFunc = prevToken
	})
}

func loginRoute(r *gin.Engine) {
	r.POST("/api/login", Login)
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	withLogin(t, func(context.Context, string, string) (*services.Account, error) {
		t.Fatal("login should not run")
		return nil, nil
	})

	for _, body := range []string{`{"email":"pm@example.com"}`, `{"password":"x"}`, `not json`} {
		rec := performRequest(t, http.MethodPost, "/api/login", []byte(body), loginRoute)
		expectStatus(t, rec, http.StatusBadRequest)
		if msg := decodeBody(t, rec)["message"]; msg != "Email and password required" {
			t.Fatalf("body %s: unexpected message %v", body, msg)
		}
	}
}

func TestLoginMapsFailures(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{services.ErrNotFound, http.StatusNotFound, "Email not found in system"},
		{services.ErrInvalidPassword, http.StatusUnauthorized, "Invalid password"},
		{errors.New("database is locked"), http.StatusInternalServerError, "database is locked"},
	}

	for _, tc := range cases {
		withLogin(t, func(context.Context, string, string) (*services.Account, error) {
			return nil, tc.err
		})
		rec := performRequest(t, http.MethodPost, "/api/login", []byte(`{"email":"x@example.com","password":"pw"}`), loginRoute)
		expectStatus(t, rec, tc.status)
		body := decodeBody(t, rec)
		if body["success"] != false || body["message"] != tc.message {
			t.Fatalf("unexpected body for %v: %v", tc.err, body)
		}
	}
}

func TestLoginSupervisorPayload(t *testing.T) {
	projectID := uint(12)
	withLogin(t, func(_ context.Context, email, password string) (*services.Account, error) {
		if email != "sv@example.com" || password != "site-pass" {
			t.Fatalf("unexpected credentials %q %q", email, password)
		}
		return &services.Account{
			Type:      models.AccountTypeSupervisor,
			ID:        4,
			Email:     "sv@example.com",
			FirstName: "Lia",
			LastName:  "Santos",
			Role:      models.RoleSupervisor,
			ProjectID: &projectID,
		}, nil
	})

	rec := performRequest(t, http.MethodPost, "/api/login", []byte(`{"email":"sv@example.com","password":"site-pass"}`), loginRoute)
	expectStatus(t, rec, http.StatusOK)

	body := decodeBody(t, rec)
	if body["success"] != true || body["message"] != "Login successful" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["token"] != "token-for-Supervisor" {
		t.Fatalf("unexpected token: %v", body["token"])
	}
	user := body["user"].(map[string]interface{})
	if user["supervisor_id"] != float64(4) || user["project_id"] != float64(12) || user["type"] != "Supervisor" {
		t.Fatalf("unexpected user payload: %v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be returned")
	}
}

func TestAccountPayloadForManagerHasNoProject(t *testing.T) {
	payload := accountPayload(&services.Account{Type: models.AccountTypeUser, ID: 1, Role: models.RoleProjectManager})
	if _, ok := payload["project_id"]; ok {
		t.Fatalf("manager payload should not carry project_id: %v", payload)
	}
	if payload["user_id"] != uint(1) {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
}
