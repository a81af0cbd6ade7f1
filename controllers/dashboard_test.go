package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"structura-api/services"

	"github.com/gin-gonic/gin"
)

func withDashboardSummary(t *testing.T, fn func(context.Context, uint) (*services.DashboardSummary, error)) {
	t.Helper()
	prev := dashboardSummaryFunc
	dashboardSummaryFunc = fn
	t.Cleanup(func() { dashboardSummaryFunc = prev })
}

func dashboardRoute(r *gin.Engine) {
	r.GET("/api/dashboard/pm-summary", GetPMDashboardSummary)
}

func TestDashboardRequiresUserID(t *testing.T) {
	withDashboardSummary(t, func(context.Context, uint) (*services.DashboardSummary, error) {
		t.Fatal("summary should not be built")
		return nil, nil
	})

	rec := performRequest(t, http.MethodGet, "/api/dashboard/pm-summary", nil, dashboardRoute)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decodeBody(t, rec)["message"]; msg != "user_id is required" {
		t.Fatalf("unexpected message: %v", msg)
	}

	rec = performRequest(t, http.MethodGet, "/api/dashboard/pm-summary?user_id=abc", nil, dashboardRoute)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decodeBody(t, rec)["message"]; msg != "user_id must be an integer" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestDashboardReturnsSummary(t *testing.T) {
	var gotID uint
	withDashboardSummary(t, func(_ context.Context, managerID uint) (*services.DashboardSummary, error) {
		gotID = managerID
		return &services.DashboardSummary{
			Success:  true,
			Projects: services.DashboardProjects{Total: 3, Recent: []services.DashboardRecentProject{}},
		}, nil
	})

	rec := performRequest(t, http.MethodGet, "/api/dashboard/pm-summary?user_id=42", nil, dashboardRoute)
	expectStatus(t, rec, http.StatusOK)
	if gotID != 42 {
		t.Fatalf("expected manager 42, got %d", gotID)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body["success"])
	}
	projects := body["projects"].(map[string]interface{})
	if projects["total"] != float64(3) {
		t.Fatalf("unexpected projects: %v", projects)
	}
}

func TestDashboardHidesInternalErrors(t *testing.T) {
	withDashboardSummary(t, func(context.Context, uint) (*services.DashboardSummary, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	rec := performRequest(t, http.MethodGet, "/api/dashboard/pm-summary?user_id=1", nil, dashboardRoute)
	expectStatus(t, rec, http.StatusInternalServerError)
	if msg := decodeBody(t, rec)["error"]; msg != "Failed to build dashboard summary" {
		t.Fatalf("unexpected error: %v", msg)
	}
}

func TestDashboardNonPositiveUserIDReturnsEmptySummary(t *testing.T) {
	withDashboardSummary(t, func(context.Context, uint) (*services.DashboardSummary, error) {
		t.Fatal("summary should not query for a non-positive id")
		return nil, nil
	})

	for _, raw := range []string{"-1", "0"} {
		rec := performRequest(t, http.MethodGet, "/api/dashboard/pm-summary?user_id="+raw, nil, dashboardRoute)
		expectStatus(t, rec, http.StatusOK)

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Fatalf("expected success for %s, got %v", raw, body["success"])
		}
		projects := body["projects"].(map[string]interface{})
		if projects["total"] != float64(0) || len(projects["recent"].([]interface{})) != 0 {
			t.Fatalf("expected no projects for %s, got %v", raw, projects)
		}
		series := body["activity"].(map[string]interface{})["series"].([]interface{})
		if len(series) != 7 {
			t.Fatalf("expected 7 activity days for %s, got %d", raw, len(series))
		}
		if todays := body["tasks_today"].([]interface{}); len(todays) != 0 {
			t.Fatalf("expected no tasks today for %s, got %v", raw, todays)
		}
	}
}
