package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/models"
	"storefront-backend/repository"
)

const tokenTTL = 24 * time.Hour

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and profile management.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *ServiceError)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, *ServiceError)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, *ServiceError)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	repo      repository.UserRepository
	jwtSecret []byte
	logger    *zap.Logger
}

// NewAuthService creates an AuthService signing tokens with jwtSecret.
func NewAuthService(repo repository.UserRepository, jwtSecret string, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtSecret: []byte(jwtSecret), logger: logger}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, NewConflictError("an account with this email already exists")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, NewInternalError("failed to check existing account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hash),
		Phone:    req.Phone,
		Role:     models.RoleCustomer,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, NewInternalError("failed to create account", err)
	}

	token, svcErr := s.issueToken(user)
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("User registered", zap.String("email", email))
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewValidationError("invalid email or password")
		}
		return nil, NewInternalError("failed to look up account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, NewValidationError("invalid email or password")
	}

	token, svcErr := s.issueToken(user)
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("User logged in", zap.String("email", email))
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, *ServiceError) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to load profile", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, *ServiceError) {
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Addresses != nil {
		set["addresses"] = req.Addresses
	}
	if len(set) == 0 {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.repo.Update(ctx, userID, set)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to update profile", err)
	}
	return user, nil
}

func (s *authService) issueToken(user *models.User) (string, *ServiceError) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", NewInternalError("failed to sign token", err)
	}
	return token, nil
}

// ValidateToken parses and verifies a bearer token.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
