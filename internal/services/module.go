package services

import (
  "context"
  "encoding/json"
  "fmt"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/studykite/studykite-backend/internal/apierr"
  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/repos"
  "github.com/studykite/studykite-backend/internal/types"
)

type ModuleService interface {
  CreateModuleGraph(ctx context.Context, userID uuid.UUID, module *types.Module, submodules []*types.Submodule) error
  GetModule(ctx context.Context, moduleID uuid.UUID) (*types.Module, []*types.Submodule, error)
  AddUsersToModule(ctx context.Context, moduleID uuid.UUID, userIDs []uuid.UUID, adminID uuid.UUID) error
}

type moduleService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  moduleRepo    repos.ModuleRepo
  submoduleRepo repos.SubmoduleRepo
  progressRepo  repos.ProgressRepo
}

func NewModuleService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  moduleRepo repos.ModuleRepo,
  submoduleRepo repos.SubmoduleRepo,
  progressRepo repos.ProgressRepo,
) ModuleService {
  return &moduleService{
    db:            db,
    log:           baseLog.With("service", "ModuleService"),
    userRepo:      userRepo,
    moduleRepo:    moduleRepo,
    submoduleRepo: submoduleRepo,
    progressRepo:  progressRepo,
  }
}

// CreateModuleGraph commits a generated module and everything hanging off it
// in one transaction: the module row, its submodules, a progress row per
// submodule for the creating user, and the submodule-id patch back onto the
// module. Either all of it lands or none of it does.
func (ms *moduleService) CreateModuleGraph(ctx context.Context, userID uuid.UUID, module *types.Module, submodules []*types.Submodule) error {
  if module == nil {
    return fmt.Errorf("nil module")
  }
  if len(submodules) == 0 {
    return fmt.Errorf("module has no submodules")
  }

  return ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    now := time.Now()
    if module.ID == uuid.Nil {
      module.ID = uuid.New()
    }
    createdBy, err := json.Marshal([]string{userID.String()})
    if err != nil {
      return fmt.Errorf("encode created_by: %w", err)
    }
    module.CreatedBy = datatypes.JSON(createdBy)
    module.CreatedAt = now
    module.UpdatedAt = now
    if _, err := ms.moduleRepo.Create(ctx, tx, []*types.Module{module}); err != nil {
      return fmt.Errorf("create module: %w", err)
    }

    submoduleIDs := make([]string, 0, len(submodules))
    progressRows := make([]*types.SubmoduleProgress, 0, len(submodules))
    for _, sub := range submodules {
      if sub.ID == uuid.Nil {
        sub.ID = uuid.New()
      }
      sub.ModuleID = module.ID
      sub.CreatedAt = now
      sub.UpdatedAt = now
      submoduleIDs = append(submoduleIDs, sub.ID.String())
      progressRows = append(progressRows, &types.SubmoduleProgress{
        ID:             uuid.New(),
        UserID:         userID,
        SubmoduleID:    sub.ID,
        ProgressStatus: types.ProgressStatusNotStarted,
        LastUpdated:    now,
      })
    }
    if _, err := ms.submoduleRepo.Create(ctx, tx, submodules); err != nil {
      return fmt.Errorf("create submodules: %w", err)
    }
    if _, err := ms.progressRepo.Create(ctx, tx, progressRows); err != nil {
      return fmt.Errorf("create progress records: %w", err)
    }

    idsJSON, err := json.Marshal(submoduleIDs)
    if err != nil {
      return fmt.Errorf("encode submodule ids: %w", err)
    }
    if err := ms.moduleRepo.UpdateSubmoduleIDs(ctx, tx, module.ID, idsJSON); err != nil {
      return fmt.Errorf("patch submodule ids: %w", err)
    }
    module.Submodules = datatypes.JSON(idsJSON)
    return nil
  })
}

func (ms *moduleService) GetModule(ctx context.Context, moduleID uuid.UUID) (*types.Module, []*types.Submodule, error) {
  mods, err := ms.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{moduleID})
  if err != nil {
    return nil, nil, fmt.Errorf("load module: %w", err)
  }
  if len(mods) == 0 || mods[0] == nil {
    return nil, nil, fmt.Errorf("module %s: %w", moduleID, apierr.ErrNotFound)
  }
  subs, err := ms.submoduleRepo.GetByModuleIDs(ctx, nil, []uuid.UUID{moduleID})
  if err != nil {
    return nil, nil, fmt.Errorf("load submodules: %w", err)
  }
  return mods[0], orderByIDList(subs, mods[0].Submodules), nil
}

// orderByIDList sorts submodules to match the id list patched onto the module
// at assembly time. Rows created in one batch share timestamps, so the list is
// the only record of the intended order.
func orderByIDList(subs []*types.Submodule, idList datatypes.JSON) []*types.Submodule {
  var ids []string
  if len(idList) == 0 || json.Unmarshal(idList, &ids) != nil {
    return subs
  }
  rank := make(map[string]int, len(ids))
  for i, id := range ids {
    rank[id] = i
  }
  ordered := make([]*types.Submodule, len(subs))
  copy(ordered, subs)
  sort.SliceStable(ordered, func(i, j int) bool {
    ri, iok := rank[ordered[i].ID.String()]
    rj, jok := rank[ordered[j].ID.String()]
    if iok != jok {
      return iok
    }
    return ri < rj
  })
  return ordered
}

// AddUsersToModule enrolls users into an existing module on behalf of an
// admin: the users get a fresh progress row for every submodule, and both
// they and the admin are appended to the module's created_by list. Users
// already enrolled are skipped.
func (ms *moduleService) AddUsersToModule(ctx context.Context, moduleID uuid.UUID, userIDs []uuid.UUID, adminID uuid.UUID) error {
  if len(userIDs) == 0 {
    return apierr.Validation("no users to add")
  }

  return ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    mods, err := ms.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{moduleID})
    if err != nil {
      return fmt.Errorf("load module: %w", err)
    }
    if len(mods) == 0 || mods[0] == nil {
      return fmt.Errorf("module %s: %w", moduleID, apierr.ErrNotFound)
    }
    module := mods[0]

    admins, err := ms.userRepo.GetByIDs(ctx, tx, []uuid.UUID{adminID})
    if err != nil {
      return fmt.Errorf("load admin: %w", err)
    }
    if len(admins) == 0 || admins[0] == nil {
      return fmt.Errorf("admin %s: %w", adminID, apierr.ErrNotFound)
    }
    if !admins[0].Admin {
      return apierr.Validation("user %s is not an admin", adminID)
    }

    users, err := ms.userRepo.GetByIDs(ctx, tx, userIDs)
    if err != nil {
      return fmt.Errorf("load users: %w", err)
    }
    found := make(map[uuid.UUID]bool, len(users))
    for _, u := range users {
      if u != nil {
        found[u.ID] = true
      }
    }
    for _, id := range userIDs {
      if !found[id] {
        return fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
      }
    }

    var enrolled []string
    if len(module.CreatedBy) > 0 {
      if err := json.Unmarshal(module.CreatedBy, &enrolled); err != nil {
        return fmt.Errorf("decode created_by: %w", err)
      }
    }
    already := make(map[string]bool, len(enrolled))
    for _, id := range enrolled {
      already[id] = true
    }

    subs, err := ms.submoduleRepo.GetByModuleIDs(ctx, tx, []uuid.UUID{moduleID})
    if err != nil {
      return fmt.Errorf("load submodules: %w", err)
    }

    now := time.Now()
    var progressRows []*types.SubmoduleProgress
    for _, id := range userIDs {
      if already[id.String()] {
        ms.log.Debug("user already enrolled", "user_id", id, "module_id", moduleID)
        continue
      }
      enrolled = append(enrolled, id.String())
      already[id.String()] = true
      for _, sub := range subs {
        progressRows = append(progressRows, &types.SubmoduleProgress{
          ID:             uuid.New(),
          UserID:         id,
          SubmoduleID:    sub.ID,
          ProgressStatus: types.ProgressStatusNotStarted,
          LastUpdated:    now,
        })
      }
    }
    if !already[adminID.String()] {
      enrolled = append(enrolled, adminID.String())
      already[adminID.String()] = true
    }
    if len(progressRows) > 0 {
      if _, err := ms.progressRepo.Create(ctx, tx, progressRows); err != nil {
        return fmt.Errorf("create progress records: %w", err)
      }
    }

    enrolledJSON, err := json.Marshal(enrolled)
    if err != nil {
      return fmt.Errorf("encode created_by: %w", err)
    }
    if err := ms.moduleRepo.UpdateCreatedBy(ctx, tx, moduleID, enrolledJSON); err != nil {
      return fmt.Errorf("update created_by: %w", err)
    }
    return nil
  })
}
