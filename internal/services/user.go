package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/studykite/studykite-backend/internal/apierr"
  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/repos"
  "github.com/studykite/studykite-backend/internal/types"
)

type UserService interface {
  CreateUser(ctx context.Context, email, password string, admin bool, adminID *uuid.UUID) (*types.User, error)
  DeleteUser(ctx context.Context, userID uuid.UUID) error
  ListStudentsOfAdmin(ctx context.Context, adminID uuid.UUID) ([]*types.User, error)
  Authenticate(ctx context.Context, email, password string) (*types.User, error)
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
  return &userService{
    db:       db,
    log:      baseLog.With("service", "UserService"),
    userRepo: userRepo,
  }
}

// CreateUser registers an account. When adminID is set the new user is
// recorded in that admin's student roster inside the same transaction.
func (us *userService) CreateUser(ctx context.Context, email, password string, admin bool, adminID *uuid.UUID) (*types.User, error) {
  if email == "" || password == "" {
    return nil, apierr.Validation("email and password are required")
  }

  hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return nil, fmt.Errorf("hash password: %w", err)
  }

  var user *types.User
  err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    exists, err := us.userRepo.EmailExists(ctx, tx, email)
    if err != nil {
      return fmt.Errorf("check email: %w", err)
    }
    if exists {
      return fmt.Errorf("email %s already registered: %w", email, apierr.ErrConflict)
    }

    now := time.Now()
    user = &types.User{
      ID:        uuid.New(),
      Email:     email,
      Password:  string(hash),
      Admin:     admin,
      Students:  datatypes.JSON([]byte(`[]`)),
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := us.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
      return fmt.Errorf("create user: %w", err)
    }

    if adminID != nil {
      if err := us.appendStudent(ctx, tx, *adminID, user.ID); err != nil {
        return err
      }
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  us.log.Info("user created", "user_id", user.ID, "admin", admin)
  return user, nil
}

func (us *userService) appendStudent(ctx context.Context, tx *gorm.DB, adminID, studentID uuid.UUID) error {
  admins, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{adminID})
  if err != nil {
    return fmt.Errorf("load admin: %w", err)
  }
  if len(admins) == 0 || admins[0] == nil {
    return fmt.Errorf("admin %s: %w", adminID, apierr.ErrNotFound)
  }
  if !admins[0].Admin {
    return apierr.Validation("user %s is not an admin", adminID)
  }

  var students []string
  if len(admins[0].Students) > 0 {
    if err := json.Unmarshal(admins[0].Students, &students); err != nil {
      return fmt.Errorf("decode students: %w", err)
    }
  }
  students = append(students, studentID.String())
  studentsJSON, err := json.Marshal(students)
  if err != nil {
    return fmt.Errorf("encode students: %w", err)
  }
  if err := us.userRepo.UpdateStudents(ctx, tx, adminID, studentsJSON); err != nil {
    return fmt.Errorf("update students: %w", err)
  }
  return nil
}

func (us *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
  rows, err := us.userRepo.Delete(ctx, nil, userID)
  if err != nil {
    return fmt.Errorf("delete user: %w", err)
  }
  if rows == 0 {
    return fmt.Errorf("user %s: %w", userID, apierr.ErrNotFound)
  }
  us.log.Info("user deleted", "user_id", userID)
  return nil
}

func (us *userService) ListStudentsOfAdmin(ctx context.Context, adminID uuid.UUID) ([]*types.User, error) {
  admins, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{adminID})
  if err != nil {
    return nil, fmt.Errorf("load admin: %w", err)
  }
  if len(admins) == 0 || admins[0] == nil {
    return nil, fmt.Errorf("admin %s: %w", adminID, apierr.ErrNotFound)
  }

  var studentIDs []string
  if len(admins[0].Students) > 0 {
    if err := json.Unmarshal(admins[0].Students, &studentIDs); err != nil {
      return nil, fmt.Errorf("decode students: %w", err)
    }
  }
  if len(studentIDs) == 0 {
    return []*types.User{}, nil
  }

  ids := make([]uuid.UUID, 0, len(studentIDs))
  for _, s := range studentIDs {
    id, err := uuid.Parse(s)
    if err != nil {
      us.log.Warn("skipping malformed student id", "admin_id", adminID, "value", s)
      continue
    }
    ids = append(ids, id)
  }
  return us.userRepo.GetByIDs(ctx, nil, ids)
}

func (us *userService) Authenticate(ctx context.Context, email, password string) (*types.User, error) {
  user, err := us.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return nil, fmt.Errorf("load user: %w", err)
  }
  if user == nil {
    return nil, fmt.Errorf("email %s: %w", email, apierr.ErrNotFound)
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return nil, apierr.Validation("invalid credentials")
  }
  return user, nil
}
