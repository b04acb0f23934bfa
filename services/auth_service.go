package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/models"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

const (
	msgUserNotFound    = "user not found for this workshop"
	msgInvalidPassword = "invalid password"
	msgUserInactive    = "user account is deactivated"
)

// TokenClaims is the payload of an access token. The subject is the user id.
type TokenClaims struct {
	Role       string `json:"role"`
	WorkshopID uint   `json:"workshop_id"`
	jwt.RegisteredClaims
}

type LoginInput struct {
	Email      string
	Password   string
	WorkshopID uint
}

type LoginResult struct {
	Token    string           `json:"token"`
	User     *models.User     `json:"user"`
	Workshop *models.Workshop `json:"workshop"`
}

type AuthService struct {
	store *Store
	cfg   *config.Config
}

func NewAuthService(store *Store, cfg *config.Config) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", &ServiceError{Code: CodeValidation, Message: "password cannot be hashed", Err: err}
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials against the chosen workshop and issues a
// signed token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.WorkshopID == 0 {
		return nil, validationError("email, password and workshop_id are required")
	}

	var user models.User
	err := s.store.DB(ctx).
		Preload("Workshop").
		Where("workshop_id = ? AND email = ?", in.WorkshopID, email).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized(msgUserNotFound)
	}
	if err != nil {
		return nil, storeError("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.L().Info("login rejected", zap.Uint("user_id", user.ID), zap.String("reason", "password"))
		return nil, unauthorized(msgInvalidPassword)
	}
	if !user.Active {
		logger.L().Info("login rejected", zap.Uint("user_id", user.ID), zap.String("reason", "inactive"))
		return nil, unauthorized(msgUserInactive)
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: &user, Workshop: user.Workshop}, nil
}

// IssueToken signs an HS256 token carrying the user's role and workshop.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Role:       user.Role,
		WorkshopID: user.WorkshopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWTAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", &ServiceError{Code: CodeUnauthorized, Message: "failed to sign token", Err: err}
	}
	return signed, nil
}

// ResolveIdentity turns validated token claims into a Scope. The user row is
// re-read so a deactivated or moved account loses access immediately.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID, workshopID uint) (Scope, error) {
	if userID == 0 || workshopID == 0 {
		return Scope{}, unauthorized("invalid token subject")
	}

	var user models.User
	err := s.store.DB(ctx).
		Select("id", "role", "active", "workshop_id").
		Where("id = ? AND workshop_id = ?", userID, workshopID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Scope{}, unauthorized(msgUserNotFound)
	}
	if err != nil {
		return Scope{}, storeError("load user", err)
	}
	if !user.Active {
		return Scope{}, unauthorized(msgUserInactive)
	}
	return Scope{UserID: user.ID, Role: user.Role, WorkshopID: user.WorkshopID}, nil
}

// Me returns the caller's user row.
func (s *AuthService) Me(ctx context.Context, scope Scope) (*models.User, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	var user models.User
	err := scoped(s.store.DB(ctx), scope).Where("id = ?", scope.UserID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized(msgUserNotFound)
	}
	if err != nil {
		return nil, storeError("load user", err)
	}
	if !user.Active {
		return nil, unauthorized(msgUserInactive)
	}
	return &user, nil
}
