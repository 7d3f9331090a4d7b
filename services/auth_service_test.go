package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/models"
	"storefront-backend/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	r.users[user.ID.Hex()] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.Hex()]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.Hex()]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if v, ok := set["name"].(string); ok {
		u.Name = v
	}
	if v, ok := set["phone"].(string); ok {
		u.Phone = v
	}
	if v, ok := set["addresses"].([]models.Address); ok {
		u.Addresses = v
	}
	copied := *u
	return &copied, nil
}

func newTestAuthService(repo repository.UserRepository) AuthService {
	return NewAuthService(repo, "test-secret", zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	resp, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "Asha@Example.com",
		Password: "correct-horse",
	})
	require.Nil(t, svcErr)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)

	// The stored password must be a bcrypt hash, never the plaintext.
	stored, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct-horse")))

	login, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "asha@example.com",
		Password: "correct-horse",
	})
	require.Nil(t, svcErr)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	req := &models.RegisterRequest{Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse"}

	_, svcErr := svc.Register(context.Background(), req)
	require.Nil(t, svcErr)

	_, svcErr = svc.Register(context.Background(), req)
	require.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	_, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse",
	})
	require.Nil(t, svcErr)

	_, wrongPw := svc.Login(context.Background(), &models.LoginRequest{
		Email: "asha@example.com", Password: "wrong-horse",
	})
	require.NotNil(t, wrongPw)

	_, noUser := svc.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.com", Password: "correct-horse",
	})
	require.NotNil(t, noUser)

	// Unknown account and bad password are indistinguishable.
	assert.Equal(t, noUser.StatusCode, wrongPw.StatusCode)
	assert.Equal(t, noUser.Message, wrongPw.Message)
}

func TestValidateToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	resp, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse",
	})
	require.Nil(t, svcErr)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.Hex(), claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)

	_, err = svc.ValidateToken(resp.Token + "tampered")
	assert.Error(t, err)

	other := NewAuthService(repo, "another-secret", zap.NewNop())
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	resp, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "correct-horse",
	})
	require.Nil(t, svcErr)

	updated, svcErr := svc.UpdateProfile(context.Background(), resp.User.ID, &models.UpdateProfileRequest{
		Phone: "9876543210",
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "9876543210", updated.Phone)
	assert.Equal(t, "Asha Rao", updated.Name)
}
