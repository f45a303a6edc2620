package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/models"
)

var (
	// ErrInvalidCredentials covers both unknown login ids and wrong
	// passwords; the two are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid login id or password")

	// ErrLoginIDTaken rejects a duplicate login id on user creation.
	ErrLoginIDTaken = errors.New("login id already exists")
)

// DefaultRole is assigned when the role cell is blank.
const DefaultRole = "User"

// tokenTTL bounds how long an issued session token stays valid.
const tokenTTL = 24 * time.Hour

var serialPattern = regexp.MustCompile(`^SN-(\d+)$`)

// UserStore is what authentication needs from the user repository.
type UserStore interface {
	FetchAll(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u models.User) error
}

// AuthService authenticates against the Login sheet and manages user rows.
// Passwords are compared as the exact plaintext stored in the sheet; that is
// the contract the sheet was built around and hashing them here would lock
// out every existing account.
type AuthService struct {
	store  UserStore
	secret []byte
	now    func() time.Time
	logger *zap.Logger
}

func NewAuthService(store UserStore, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		secret: []byte(secret),
		now:    time.Now,
		logger: logger,
	}
}

// Session is the successful login payload.
type Session struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Claims is the JWT claim set issued on login.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login matches loginID case-insensitively and the password exactly against
// the sheet, then issues an HS256 token.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*Session, error) {
	users, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	loginID = strings.TrimSpace(loginID)
	for _, u := range users {
		if !strings.EqualFold(u.LoginID, loginID) {
			continue
		}
		if u.Password != password {
			break
		}
		role := u.Role
		if strings.TrimSpace(role) == "" {
			role = DefaultRole
		}

		now := s.now()
		claims := Claims{
			Name: u.Name,
			Role: role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   u.LoginID,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
		if err != nil {
			return nil, err
		}

		s.logger.Info("user logged in", zap.String("login_id", u.LoginID), zap.String("role", role))
		return &Session{Token: token, Name: u.Name, Role: role}, nil
	}

	s.logger.Warn("login rejected", zap.String("login_id", loginID))
	return nil, ErrInvalidCredentials
}

// VerifyToken parses and validates a bearer token and returns its claims.
func (s *AuthService) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// ListUsers returns every Login sheet row.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.FetchAll(ctx)
}

// AddUser appends a new account with the next SN-NNN serial. The serial
// counter is the maximum existing SN-number plus one, so gaps left by manual
// sheet edits are never reused out of order.
func (s *AuthService) AddUser(ctx context.Context, name, loginID, password, role string) (*models.User, error) {
	users, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	loginID = strings.TrimSpace(loginID)
	for _, u := range users {
		if strings.EqualFold(u.LoginID, loginID) {
			return nil, ErrLoginIDTaken
		}
	}

	if strings.TrimSpace(role) == "" {
		role = DefaultRole
	}
	user := models.User{
		SerialNo: nextSerial(users),
		Name:     strings.TrimSpace(name),
		LoginID:  loginID,
		Password: password,
		Role:     role,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user added", zap.String("serial", user.SerialNo), zap.String("login_id", user.LoginID))
	return &user, nil
}

func nextSerial(users []models.User) string {
	max := 0
	for _, u := range users {
		m := serialPattern.FindStringSubmatch(strings.TrimSpace(u.SerialNo))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("SN-%03d", max+1)
}
