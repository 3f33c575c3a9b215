package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/studykite/studykite-backend/internal/apierr"
	"github.com/studykite/studykite-backend/internal/repos"
)

func newTestUserService(t *testing.T) UserService {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	return NewUserService(db, log, repos.NewUserRepo(db, log))
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc := newTestUserService(t)
	user, err := svc.CreateUser(context.Background(), "s@x.y", "secret", false, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Password == "secret" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "dup@x.y", "p1", false, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateUser(ctx, "dup@x.y", "p2", false, nil)
	if !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateUser_RejectsBlankInput(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.CreateUser(context.Background(), "", "p", false, nil); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateUser_AppendsToAdminRoster(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()
	admin, err := svc.CreateUser(ctx, "admin@x.y", "p", true, nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	s1, err := svc.CreateUser(ctx, "s1@x.y", "p", false, &admin.ID)
	if err != nil {
		t.Fatalf("create student 1: %v", err)
	}
	s2, err := svc.CreateUser(ctx, "s2@x.y", "p", false, &admin.ID)
	if err != nil {
		t.Fatalf("create student 2: %v", err)
	}

	students, err := svc.ListStudentsOfAdmin(ctx, admin.ID)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	got := map[uuid.UUID]bool{}
	for _, s := range students {
		got[s.ID] = true
	}
	if !got[s1.ID] || !got[s2.ID] {
		t.Fatalf("roster missing students: %v", got)
	}
}

func TestCreateUser_RejectsNonAdminRoster(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()
	plain, err := svc.CreateUser(ctx, "plain@x.y", "p", false, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "s@x.y", "p", false, &plain.ID); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error for non-admin owner, got %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc := newTestUserService(t)
	err := svc.DeleteUser(context.Background(), uuid.New())
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteUser_RemovesRow(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()
	user, err := svc.CreateUser(ctx, "del@x.y", "p", false, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteUser(ctx, user.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}

func TestListStudentsOfAdmin_AdminNotFound(t *testing.T) {
	svc := newTestUserService(t)
	if _, err := svc.ListStudentsOfAdmin(context.Background(), uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAuthenticate_ChecksPassword(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "login@x.y", "right", false, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "login@x.y", "right"); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "login@x.y", "wrong"); err == nil {
		t.Fatalf("expected failure for wrong password")
	}
	if _, err := svc.Authenticate(ctx, "ghost@x.y", "right"); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found for unknown email, got %v", err)
	}
}
