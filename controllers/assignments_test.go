package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"structura-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestDecodeAssignmentsObjectAndArray(t *testing.T) {
	items, bulk, err := decodeAssignments([]byte(`{"subtask": 3, "field_worker": 8}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bulk || len(items) != 1 || items[0].SubtaskID != 3 || items[0].FieldWorkerID != 8 {
		t.Fatalf("unexpected decode: %+v bulk=%v", items, bulk)
	}

	items, bulk, err = decodeAssignments([]byte(" \n[{\"subtask\":1,\"field_worker\":2},{\"subtask\":1,\"field_worker\":5}]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bulk || len(items) != 2 || items[1].FieldWorkerID != 5 {
		t.Fatalf("unexpected decode: %+v bulk=%v", items, bulk)
	}

	if _, _, err := decodeAssignments([]byte(`{"subtask": "x"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDeleteAssignmentsBySubtaskValidatesQuery(t *testing.T) {
	route := func(r *gin.Engine) {
		r.DELETE("/api/subtask-assignments/delete_by_subtask", DeleteAssignmentsBySubtask)
	}

	rec := performRequest(t, http.MethodDelete, "/api/subtask-assignments/delete_by_subtask", nil, route)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decodeBody(t, rec)["error"]; msg != "subtask_id is required" {
		t.Fatalf("unexpected error: %v", msg)
	}

	rec = performRequest(t, http.MethodDelete, "/api/subtask-assignments/delete_by_subtask?subtask_id=-1", nil, route)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decodeBody(t, rec)["error"]; msg != "subtask_id must be an integer" {
		t.Fatalf("unexpected error: %v", msg)
	}
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: phase_name is required", services.ErrValidation), http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: already assigned", services.ErrConflict), http.StatusConflict},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{errors.New("broken pipe"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		route := func(r *gin.Engine) {
			r.GET("/x", func(c *gin.Context) { respondError(c, tc.err, "save phase") })
		}
		rec := performRequest(t, http.MethodGet, "/x", nil, route)
		expectStatus(t, rec, tc.status)
		if tc.status == http.StatusInternalServerError {
			if msg := decodeBody(t, rec)["error"]; msg != "Failed to save phase" {
				t.Fatalf("unexpected error: %v", msg)
			}
		}
	}
}

func TestPathIDRejectsNonPositive(t *testing.T) {
	route := func(r *gin.Engine) {
		r.GET("/phases/:id", func(c *gin.Context) {
			if id, ok := pathID(c, "phase"); ok {
				c.JSON(http.StatusOK, gin.H{"id": id})
			}
		})
	}

	for _, raw := range []string{"0", "abc", "-4"} {
		rec := performRequest(t, http.MethodGet, "/phases/"+raw, nil, route)
		expectStatus(t, rec, http.StatusBadRequest)
		if msg := decodeBody(t, rec)["error"]; msg != "Invalid phase ID" {
			t.Fatalf("unexpected error for %q: %v", raw, msg)
		}
	}

	rec := performRequest(t, http.MethodGet, "/phases/9", nil, route)
	expectStatus(t, rec, http.StatusOK)
}
