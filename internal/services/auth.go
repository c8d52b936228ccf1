package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

const tokenIssuer = "pulseboard"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Session struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, raw []byte) (*Session, error)
	Login(ctx context.Context, raw []byte) (*Session, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		secret:    []byte(jwtSecretKey),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, raw []byte) (*Session, error) {
	in, err := validation.DecodeRegistration(raw)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		ID:        uuid.New(),
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Timezone:  in.Timezone,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(inner, u.Email)
		if err != nil {
			return err
		}
		if exists {
			return apierr.Conflict("email_taken", errors.New("email already registered"))
		}
		_, err = as.userRepo.Create(inner, []*types.User{u})
		return conflictOnDuplicate("email_taken", err)
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", u.ID)
	return as.issue(u)
}

func (as *authService) Login(ctx context.Context, raw []byte) (*Session, error) {
	in, err := validation.DecodeCredentials(raw)
	if err != nil {
		return nil, err
	}
	u, err := as.userRepo.GetByEmail(dbctx.New(ctx), in.Email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.Unauthorized(ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, apierr.Unauthorized(ErrInvalidCredentials)
	}
	return as.issue(u)
}

func (as *authService) issue(u *types.User) (*Session, error) {
	now := as.now().UTC()
	exp := now.Add(as.accessTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp, User: u}, nil
}

// SetContextFromToken verifies tokenString and attaches the caller to ctx.
// The user row is reloaded so a changed timezone applies immediately.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized(ErrInvalidToken)
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return as.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(ErrInvalidToken)
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return ctx, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return ctx, apierr.Unauthorized(ErrInvalidToken)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:   u.ID,
		TokenID:  claims.ID,
		Timezone: u.Timezone,
	}), nil
}
