package repository

import (
	"testing"

	"github.com/signetlab/signet/internal/models"
)

func TestAuditRepository_CreateAndList(t *testing.T) {
	database := newTestDB(t)
	repo := NewAuditRepository(database.DB)

	entries := []*models.AuditLog{
		{Action: models.ActionCertSign, UserID: "user_1", ClientIP: "10.0.0.1", Success: true, Details: `{"certId":"cert_1"}`},
		{Action: models.ActionCertVerify, UserID: "", ClientIP: "10.0.0.2", Success: true},
		{Action: models.ActionAuthFailed, UserID: "user_2", ClientIP: "10.0.0.3", Success: false, ErrorMsg: "invalid token"},
	}
	for _, e := range entries {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List("", "", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("entries = %d, want 3", len(all))
	}

	byUser, err := repo.List("user_1", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 1 || byUser[0].Action != models.ActionCertSign {
		t.Errorf("user filter returned %d entries", len(byUser))
	}

	byAction, err := repo.List("", models.ActionAuthFailed, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byAction) != 1 {
		t.Fatalf("action filter returned %d entries", len(byAction))
	}
	if byAction[0].Success {
		t.Error("auth_failed entry marked successful")
	}
	if byAction[0].ErrorMsg != "invalid token" {
		t.Errorf("ErrorMsg = %q", byAction[0].ErrorMsg)
	}
}
