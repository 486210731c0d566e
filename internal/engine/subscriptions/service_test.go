package subscriptions

import (
	"context"
	"errors"
	"testing"

	"hookreg/internal/engine/actions"
	"hookreg/internal/platform/audit"
	"hookreg/internal/platform/config"
	"hookreg/internal/platform/database"
	"hookreg/internal/platform/models"
	"hookreg/internal/platform/repositories"
)

var (
	callerA = &Caller{UserID: "usr_a", OrganizationID: "org_a"}
	callerB = &Caller{UserID: "usr_b", OrganizationID: "org_b"}
)

func setupService(t *testing.T) (*Service, *audit.Logger) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	orgs := repositories.NewOrganizationRepository(db)
	for _, id := range []string{"org_a", "org_b"} {
		if err := orgs.Create(context.Background(), &models.Organization{ID: id, Slug: id, Name: id, CreatedAt: 1}); err != nil {
			t.Fatal(err)
		}
	}

	auditLogger := audit.NewLogger(db)
	svc := NewService(repositories.NewWebhookRepository(db), NewValidator(actions.Default), auditLogger)
	return svc, auditLogger
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestService_CreateStampsOwner(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if w.ID == "" {
		t.Error("expected server-assigned id")
	}
	if w.OrganizationID != "org_a" {
		t.Errorf("OrganizationID = %q, want org_a", w.OrganizationID)
	}
	if !w.SendPayload || !w.SendForAllActions || !w.IsActive {
		t.Errorf("defaults not applied: %+v", w)
	}
	if w.Headers == nil || w.Actions == nil {
		t.Errorf("headers/actions should be empty, not nil: %+v", w)
	}
}

func TestService_CrossOrganizationIsolation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Get(ctx, callerB, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get by other org: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Replace(ctx, callerB, w.ID, Input{URL: "https://b.example"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace by other org: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, callerB, w.ID, Patch{URL: strPtr("https://b.example")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update by other org: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, callerB, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete by other org: err = %v, want ErrNotFound", err)
	}

	list, err := svc.List(ctx, callerB)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, item := range list {
		if item.ID == w.ID {
			t.Error("org_b list contains org_a webhook")
		}
	}

	got, err := svc.Get(ctx, callerA, w.ID)
	if err != nil {
		t.Fatalf("Get() by owner error = %v", err)
	}
	if got.URL != "https://a.example/hook" || got.UpdatedAt != w.UpdatedAt {
		t.Errorf("owner sees modified record: %+v", got)
	}
}

func TestService_NotFoundIsIndistinguishable(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatal(err)
	}

	_, foreignErr := svc.Get(ctx, callerB, w.ID)
	_, missingErr := svc.Get(ctx, callerB, "wh_does_not_exist")
	if foreignErr != missingErr {
		t.Errorf("foreign err %v differs from missing err %v", foreignErr, missingErr)
	}
}

func TestService_ListStable(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, u := range []string{"https://1.example", "https://2.example"} {
		if _, err := svc.Create(ctx, callerA, Input{URL: u}); err != nil {
			t.Fatal(err)
		}
	}

	first, err := svc.List(ctx, callerA)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.List(ctx, callerA)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("List() lengths = %d, %d; want 2", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("List() order changed at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestService_DeleteTwice(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, callerA, w.ID); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, callerA, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, callerA, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete err = %v, want ErrNotFound", err)
	}
}

func TestService_Unauthorized(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	callers := map[string]*Caller{
		"nil caller":      nil,
		"no user":         {OrganizationID: "org_a"},
		"no organization": {UserID: "usr_a"},
	}

	for name, caller := range callers {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.List(ctx, caller); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("List() err = %v", err)
			}
			if _, err := svc.Create(ctx, caller, Input{URL: "https://a.example"}); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Create() err = %v", err)
			}
			if _, err := svc.Get(ctx, caller, "wh_1"); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Get() err = %v", err)
			}
			if _, err := svc.Replace(ctx, caller, "wh_1", Input{URL: "https://a.example"}); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Replace() err = %v", err)
			}
			if _, err := svc.Update(ctx, caller, "wh_1", Patch{}); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Update() err = %v", err)
			}
			if err := svc.Delete(ctx, caller, "wh_1"); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Delete() err = %v", err)
			}
		})
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, callerA, Input{URL: "not a url", Actions: []string{"NOPE"}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() err = %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["url"]; !ok {
		t.Errorf("missing url error: %v", verr.Fields)
	}
	if _, ok := verr.Fields["actions[0]"]; !ok {
		t.Errorf("missing actions[0] error: %v", verr.Fields)
	}

	list, _ := svc.List(ctx, callerA)
	if len(list) != 0 {
		t.Errorf("invalid create persisted %d rows", len(list))
	}
}

func TestService_ReplaceResetsOmittedFields(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{
		URL:               "https://a.example/hook",
		SendForAllActions: boolPtr(false),
		Actions:           []string{actions.ProjectCreated},
		Headers:           map[string]string{"X-Token": "abc"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Replace(ctx, callerA, w.ID, Input{URL: "https://a.example/v2"})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if got.ID != w.ID || got.OrganizationID != "org_a" || got.CreatedAt != w.CreatedAt {
		t.Errorf("identity not preserved: %+v", got)
	}
	if got.URL != "https://a.example/v2" || !got.SendForAllActions || len(got.Actions) != 0 || len(got.Headers) != 0 {
		t.Errorf("Replace() = %+v, want defaults for omitted fields", got)
	}
}

func TestService_UpdateMergesFields(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{
		URL:     "https://a.example/hook",
		Headers: map[string]string{"X-Token": "abc"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Update(ctx, callerA, w.ID, Patch{
		IsActive: boolPtr(false),
		Actions:  &[]string{actions.TasksCreated, actions.TasksCreated},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.IsActive {
		t.Error("is_active not updated")
	}
	if got.URL != "https://a.example/hook" || got.Headers["X-Token"] != "abc" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if len(got.Actions) != 1 || got.Actions[0] != actions.TasksCreated {
		t.Errorf("Actions = %v, want [TASKS_CREATED]", got.Actions)
	}

	stored, err := svc.Get(ctx, callerA, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.IsActive || stored.OrganizationID != "org_a" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestService_UpdateValidationLeavesRecord(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, callerA, w.ID, Patch{URL: strPtr("")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update() err = %v, want ValidationError", err)
	}

	stored, err := svc.Get(ctx, callerA, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.URL != "https://a.example/hook" {
		t.Errorf("URL = %q after failed update", stored.URL)
	}
}

func TestService_AuditTrail(t *testing.T) {
	svc, auditLogger := setupService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, callerA, Input{URL: "https://a.example/hook"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, callerA, w.ID, Patch{IsActive: boolPtr(false)}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, callerA, w.ID); err != nil {
		t.Fatal(err)
	}

	entries, err := auditLogger.ListByOrg(ctx, "org_a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(entries))
	}
	want := []string{auditDeleted, auditUpdated, auditCreated}
	for i, e := range entries {
		if e.Action != want[i] || e.ResourceID != w.ID || e.UserID != "usr_a" {
			t.Errorf("entry %d = %+v, want action %s", i, e, want[i])
		}
	}

	other, _ := auditLogger.ListByOrg(ctx, "org_b", 10)
	if len(other) != 0 {
		t.Errorf("org_b audit entries = %d, want 0", len(other))
	}
}
