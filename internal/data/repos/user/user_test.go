package user

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/db"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	repo := NewUserRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:     " UserRepo@Example.com ",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Timezone != "UTC" {
		t.Fatalf("Create: expected default timezone, got %q", created[0].Timezone)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	byEmail, err := repo.GetByEmail(dbc, "userrepo@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", byEmail)
	}

	exists, err := repo.EmailExists(dbc, "userrepo@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists(nonexistent): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists(nonexistent): expected false")
	}

	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%+v err=%v", missing, err)
	}

	if err := repo.UpdateProfile(dbc, created[0].ID, "New", "Name", "Europe/Paris"); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	doc := datatypes.JSON([]byte(`{"dashboard":{"defaultView":"calendar"}}`))
	if err := repo.UpdatePreferences(dbc, created[0].ID, doc); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got.FirstName != "New" || got.Timezone != "Europe/Paris" {
		t.Fatalf("UpdateProfile not applied: %+v", got)
	}
	var stored map[string]any
	if err := json.Unmarshal(got.PreferencesJSON, &stored); err != nil {
		t.Fatalf("stored preferences not JSON: %v", err)
	}
	if view := stored["dashboard"].(map[string]any)["defaultView"]; view != "calendar" {
		t.Fatalf("UpdatePreferences not applied: %s", got.PreferencesJSON)
	}

	if err := repo.UpdatePreferences(dbc, uuid.New(), doc); err != gorm.ErrRecordNotFound {
		t.Fatalf("UpdatePreferences(missing): expected not found, got %v", err)
	}
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewUserRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	if _, err := repo.Create(dbc, []*types.User{{Email: "dup@example.com", Password: "pw"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, []*types.User{{Email: "DUP@example.com", Password: "pw"}})
	if !db.IsDuplicateKey(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
