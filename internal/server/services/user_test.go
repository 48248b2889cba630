package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"clubtourney-server/internal/common"
	"clubtourney-server/internal/dbx"
	"clubtourney-server/internal/server/models"
	usersrepo "clubtourney-server/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	created *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.created = u
	u.ID = "u1"
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeUserRepoManager struct {
	fakeRepoManager
	users *fakeUsersRepo
}

func (m *fakeUserRepoManager) Users(dbx.DBTX) usersrepo.Repository { return m.users }

func newUserService(t *testing.T, users *fakeUsersRepo) *UserService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewUserService(db, &fakeUserRepoManager{users: users}, testLogger())
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := &fakeUsersRepo{}
	s := newUserService(t, repo)

	user, err := s.Register(context.Background(), "ann@club.example", "pa55word", models.RolePlayer)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if repo.created.PasswordHash == "pa55word" {
		t.Fatalf("password must never be stored in the clear")
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("pa55word")) != nil {
		t.Fatalf("stored hash must verify against the original password")
	}
}

func TestRegister_Validation(t *testing.T) {
	s := newUserService(t, &fakeUsersRepo{})

	_, err := s.Register(context.Background(), "", "pw", models.RolePlayer)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want common.ErrorValidation, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pa55word"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	repo := &fakeUsersRepo{getOut: &models.User{
		ID: "u1", Email: "ann@club.example", PasswordHash: string(hash), Role: models.RoleManager,
	}}
	s := newUserService(t, repo)

	user, err := s.Login(context.Background(), "ann@club.example", "pa55word")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u1" || user.Role != models.RoleManager {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pa55word"), bcrypt.MinCost)
	repo := &fakeUsersRepo{getOut: &models.User{PasswordHash: string(hash)}}
	s := newUserService(t, repo)

	_, err := s.Login(context.Background(), "ann@club.example", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &fakeUsersRepo{getErr: common.ErrorNotFound}
	s := newUserService(t, repo)

	_, err := s.Login(context.Background(), "ghost@club.example", "pw")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_StoreError(t *testing.T) {
	repo := &fakeUsersRepo{getErr: errors.New("db down")}
	s := newUserService(t, repo)

	_, err := s.Login(context.Background(), "ann@club.example", "pw")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want common.ErrorInternal, got %v", err)
	}
}
