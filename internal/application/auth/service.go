package auth

import (
	"context"
	"time"

	"chitfund-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// bcryptCost must stay at 12 so existing password hashes keep verifying.
const bcryptCost = 12

type Service struct {
	DB       *gorm.DB
	Secret   string
	TokenTTL time.Duration
}

// RegisterInput for the register request body.
type RegisterInput struct {
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	DOB      *time.Time `json:"dob"`
}

// Register creates a user with a bcrypt password hash. The username unique
// index backs the existence check, so a concurrent duplicate registration
// fails on insert rather than creating two accounts.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Username == "" || in.Password == "" {
		return nil, ErrAllFieldsRequired
	}

	var existing domain.User
	err := s.DB.WithContext(ctx).Where("username = ?", in.Username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: string(hash),
	}
	if in.DOB != nil {
		d := datatypes.Date(*in.DOB)
		user.DOB = &d
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, ErrUserExists
	}
	return user, nil
}

// Login finds the user by username and verifies the password.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrAllFieldsRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// CreateSecretToken signs the JWT carried in the token cookie. Claims are
// {id, exp} only; anything else a handler needs comes from the user lookup.
func (s *Service) CreateSecretToken(userID uuid.UUID) (string, error) {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID.String(),
		"exp": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(s.Secret))
}

// VerifyToken parses and validates a token cookie value, returning the user id.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrNotAuthenticated
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrNotAuthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNotAuthenticated
	}
	idStr, _ := claims["id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

// FindByID loads the user referenced by a verified token.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
