package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studykite/studykite-backend/internal/apierr"
	"github.com/studykite/studykite-backend/internal/repos"
	"github.com/studykite/studykite-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Module{}, &types.Submodule{}, &types.SubmoduleProgress{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestModuleService(t *testing.T) (ModuleService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	svc := NewModuleService(
		db, log,
		repos.NewUserRepo(db, log),
		repos.NewModuleRepo(db, log),
		repos.NewSubmoduleRepo(db, log),
		repos.NewProgressRepo(db, log),
	)
	return svc, db
}

func seedAdmin(t *testing.T, db *gorm.DB, email string) *types.User {
	t.Helper()
	admin := &types.User{ID: uuid.New(), Email: email, Password: "p", Admin: true}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func sampleSubmodules(n int) []*types.Submodule {
	subs := make([]*types.Submodule, 0, n)
	stypes := []string{types.SubmoduleTypeKinaesthetic, types.SubmoduleTypeVisual, types.SubmoduleTypeAuditory, types.SubmoduleTypeQuiz}
	for i := 0; i < n; i++ {
		subs = append(subs, &types.Submodule{
			ID:         uuid.New(),
			Name:       "sub",
			Type:       stypes[i%len(stypes)],
			LessonData: "{}",
		})
	}
	return subs
}

func TestCreateModuleGraph_CommitsWholeGraph(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	userID := uuid.New()

	module := &types.Module{ID: uuid.New(), Name: "Cells", Content: "lesson"}
	subs := sampleSubmodules(3)
	if err := svc.CreateModuleGraph(ctx, userID, module, subs); err != nil {
		t.Fatalf("create graph: %v", err)
	}

	var got types.Module
	if err := db.First(&got, "id = ?", module.ID).Error; err != nil {
		t.Fatalf("load module: %v", err)
	}
	var ids []string
	if err := json.Unmarshal(got.Submodules, &ids); err != nil {
		t.Fatalf("decode submodule ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 patched submodule ids, got %d", len(ids))
	}
	var creators []string
	if err := json.Unmarshal(got.CreatedBy, &creators); err != nil {
		t.Fatalf("decode created_by: %v", err)
	}
	if len(creators) != 1 || creators[0] != userID.String() {
		t.Fatalf("expected creating user in created_by, got %v", creators)
	}

	var subCount, progCount int64
	db.Model(&types.Submodule{}).Where("module_id = ?", module.ID).Count(&subCount)
	db.Model(&types.SubmoduleProgress{}).Where("user_id = ?", userID).Count(&progCount)
	if subCount != 3 || progCount != 3 {
		t.Fatalf("expected 3 submodules and 3 progress rows, got %d / %d", subCount, progCount)
	}

	var prog types.SubmoduleProgress
	if err := db.First(&prog, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if prog.ProgressStatus != types.ProgressStatusNotStarted {
		t.Fatalf("expected status %q, got %q", types.ProgressStatusNotStarted, prog.ProgressStatus)
	}
}

func TestCreateModuleGraph_RejectsEmptySubmodules(t *testing.T) {
	svc, _ := newTestModuleService(t)
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(context.Background(), uuid.New(), module, nil); err == nil {
		t.Fatalf("expected error for module without submodules")
	}
}

func TestAddUsersToModule_ModuleNotFound(t *testing.T) {
	svc, db := newTestModuleService(t)
	user := &types.User{ID: uuid.New(), Email: "a@b.c", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	admin := seedAdmin(t, db, "admin@b.c")
	err := svc.AddUsersToModule(context.Background(), uuid.New(), []uuid.UUID{user.ID}, admin.ID)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAddUsersToModule_AdminNotFound(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	user := &types.User{ID: uuid.New(), Email: "a@b.c", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(ctx, uuid.New(), module, sampleSubmodules(2)); err != nil {
		t.Fatalf("seed module: %v", err)
	}
	err := svc.AddUsersToModule(ctx, module.ID, []uuid.UUID{user.ID}, uuid.New())
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found for missing admin, got %v", err)
	}
}

func TestAddUsersToModule_RejectsNonAdmin(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	u1 := &types.User{ID: uuid.New(), Email: "a@b.c", Password: "x"}
	u2 := &types.User{ID: uuid.New(), Email: "b@b.c", Password: "x"}
	if err := db.Create([]*types.User{u1, u2}).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(ctx, uuid.New(), module, sampleSubmodules(2)); err != nil {
		t.Fatalf("seed module: %v", err)
	}
	err := svc.AddUsersToModule(ctx, module.ID, []uuid.UUID{u1.ID}, u2.ID)
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error for non-admin, got %v", err)
	}
}

func TestAddUsersToModule_UserNotFound(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	creator := uuid.New()
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(ctx, creator, module, sampleSubmodules(2)); err != nil {
		t.Fatalf("seed module: %v", err)
	}
	admin := seedAdmin(t, db, "admin@x.y")
	err := svc.AddUsersToModule(ctx, module.ID, []uuid.UUID{uuid.New()}, admin.ID)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found for missing user, got %v", err)
	}
}

func TestAddUsersToModule_CreatesProgressPerSubmodule(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	creator := uuid.New()
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(ctx, creator, module, sampleSubmodules(2)); err != nil {
		t.Fatalf("seed module: %v", err)
	}

	u1 := &types.User{ID: uuid.New(), Email: "s1@x.y", Password: "p"}
	u2 := &types.User{ID: uuid.New(), Email: "s2@x.y", Password: "p"}
	if err := db.Create([]*types.User{u1, u2}).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}

	admin := seedAdmin(t, db, "admin@x.y")
	if err := svc.AddUsersToModule(ctx, module.ID, []uuid.UUID{u1.ID, u2.ID}, admin.ID); err != nil {
		t.Fatalf("add users: %v", err)
	}

	var count int64
	db.Model(&types.SubmoduleProgress{}).Where("user_id IN ?", []uuid.UUID{u1.ID, u2.ID}).Count(&count)
	if count != 4 {
		t.Fatalf("expected 2 users * 2 submodules = 4 progress rows, got %d", count)
	}

	var got types.Module
	if err := db.First(&got, "id = ?", module.ID).Error; err != nil {
		t.Fatalf("load module: %v", err)
	}
	var enrolled []string
	if err := json.Unmarshal(got.CreatedBy, &enrolled); err != nil {
		t.Fatalf("decode created_by: %v", err)
	}
	if len(enrolled) != 4 {
		t.Fatalf("expected creator, 2 users and the admin enrolled, got %v", enrolled)
	}
	hasAdmin := false
	for _, id := range enrolled {
		if id == admin.ID.String() {
			hasAdmin = true
		}
	}
	if !hasAdmin {
		t.Fatalf("expected admin %s in created_by, got %v", admin.ID, enrolled)
	}
}

func TestAddUsersToModule_SkipsAlreadyEnrolled(t *testing.T) {
	svc, db := newTestModuleService(t)
	ctx := context.Background()
	creator := &types.User{ID: uuid.New(), Email: "c@x.y", Password: "p"}
	if err := db.Create(creator).Error; err != nil {
		t.Fatalf("seed creator: %v", err)
	}
	module := &types.Module{ID: uuid.New(), Name: "Cells"}
	if err := svc.CreateModuleGraph(ctx, creator.ID, module, sampleSubmodules(2)); err != nil {
		t.Fatalf("seed module: %v", err)
	}

	admin := seedAdmin(t, db, "admin@x.y")
	if err := svc.AddUsersToModule(ctx, module.ID, []uuid.UUID{creator.ID}, admin.ID); err != nil {
		t.Fatalf("re-add creator: %v", err)
	}
	var count int64
	db.Model(&types.SubmoduleProgress{}).Where("user_id = ?", creator.ID).Count(&count)
	if count != 2 {
		t.Fatalf("expected no duplicate progress rows, got %d", count)
	}
}
