package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/repos"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/account"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const minPasswordLength = 6

const msgDatabaseUnavailable = "Database unavailable. Ensure PostgreSQL 'call' is running."

type RegisterInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type LoginResult struct {
	User        *types.User
	AccessToken string
	ExpiresIn   int
}

type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ParseAccessToken(tokenString string) (*JWTClaims, error)
	AccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	status       *db.Status
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	status *db.Status,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          serviceLog,
		status:       status,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	if !as.status.Connected() {
		return nil, storeUnavailable()
	}

	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := in.Role
	if role == "" {
		role = account.RoleAdmin
	}
	role = strings.ToLower(strings.TrimSpace(role))

	switch {
	case fullName == "":
		return nil, apierr.BadRequest("invalid_request", "fullName is required")
	case email == "":
		return nil, apierr.BadRequest("invalid_request", "email is required")
	case utf8.RuneCountInString(in.Password) < minPasswordLength:
		return nil, apierr.BadRequest("invalid_request", "Password must be at least 6 characters")
	case in.Password != in.ConfirmPassword:
		return nil, apierr.BadRequest("invalid_request", "Passwords do not match")
	case !account.ValidRole(role):
		return nil, apierr.BadRequest("invalid_request", "Invalid role")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, internalError(as.log, as.status, err, "registration_failed", "Unable to create account")
	}
	if exists {
		return nil, apierr.Conflict("email_taken", "Email is already registered")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, internalError(as.log, as.status, err, "registration_failed", "Unable to create account")
	}
	user := &types.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := as.userRepo.Create(ctx, nil, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("email_taken", "Email is already registered")
		}
		return nil, internalError(as.log, as.status, err, "registration_failed", "Unable to create account")
	}
	as.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !as.status.Connected() {
		return nil, storeUnavailable()
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.BadRequest("invalid_request", "email and password are required")
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, internalError(as.log, as.status, err, "login_failed", "Unable to login")
	}
	if user == nil {
		return nil, apierr.Unauthorized("invalid_credentials", "Invalid email or password")
	}

	valid := false
	if isLegacyCredential(user.PasswordHash) {
		valid = verifyLegacy(password, user.PasswordHash)
		if valid {
			upgraded, hErr := HashPassword(password)
			if hErr != nil {
				return nil, internalError(as.log, as.status, hErr, "login_failed", "Unable to login")
			}
			if uErr := as.userRepo.UpdatePasswordHash(ctx, nil, user.ID, upgraded); uErr != nil {
				return nil, internalError(as.log, as.status, uErr, "login_failed", "Unable to login")
			}
			user.PasswordHash = upgraded
			as.log.Info("legacy credential upgraded", "user_id", user.ID)
		}
	} else {
		valid = VerifyPassword(password, user.PasswordHash)
	}
	if !valid {
		return nil, apierr.Unauthorized("invalid_credentials", "Invalid email or password")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, internalError(as.log, as.status, err, "login_failed", "Unable to login")
	}
	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	if as.jwtSecretKey == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := as.now()
	claims := JWTClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) ParseAccessToken(tokenString string) (*JWTClaims, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}
