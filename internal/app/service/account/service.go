package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/tool"
	"github.com/eduforge/coursepay/pkg/types"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrCPFTaken           = errors.New("cpf already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCPF         = errors.New("cpf must have 11 digits")
)

var cpfDigits = regexp.MustCompile(`^[0-9]{11}$`)

type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	log    *zap.SugaredLogger
}

func NewService(db *gorm.DB, tokens *TokenManager, log *zap.SugaredLogger) *Service {
	return &Service{db: db, tokens: tokens, log: log}
}

type RegisterInput struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	CPF        string         `json:"cpf"`
	Profession string         `json:"profession"`
	Password   string         `json:"password"`
	Role       types.UserRole `json:"role"`
}

func (s *Service) Register(ctx context.Context, in *RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", in.Email)
	}
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}
	cpf := strings.NewReplacer(".", "", "-", "").Replace(in.CPF)
	if !cpfDigits.MatchString(cpf) {
		return nil, ErrInvalidCPF
	}
	role := in.Role
	if role == "" {
		role = types.UserRoleStudent
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           tool.GenerateUUIDV7(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		CPF:          cpf,
		Profession:   strings.TrimSpace(in.Profession),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateErr(ctx, email, cpf)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Infow("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// duplicateErr distinguishes which unique column collided.
func (s *Service) duplicateErr(ctx context.Context, email, cpf string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err == nil && n > 0 {
		return ErrEmailTaken
	}
	var m int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("cpf = ?", cpf).Count(&m).Error; err == nil && m > 0 {
		return ErrCPFTaken
	}
	return ErrEmailTaken
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Sign(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return ErrWeakPassword
	}
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", string(hash)).Error
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
