package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrDuplicateEmail is returned when another account already uses the email
var ErrDuplicateEmail = errors.New("email already registered")

// NewUser holds registration fields
type NewUser struct {
	Username string
	Password string
	Email    string
	FullName string
	Phone    string
	UserType string
}

// ProfilePatch holds the profile fields a user may change. Nil fields are left untouched.
type ProfilePatch struct {
	FullName *string
	Phone    *string
	Email    *string
	Intro    *string
}

func optionalEmail(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}

// CreateUser registers a new account with a bcrypt password hash
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	defer prometheus.TrackDBOperation("create_user")(time.Now())

	exists, err := s.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userType := in.UserType
	if userType == "" {
		userType = model.RoleOrdinary
	}

	user := &model.User{
		Username:     in.Username,
		Email:        optionalEmail(in.Email),
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Phone:        in.Phone,
		UserType:     userType,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			// the pre-check can race; the unique index decides
			if taken, _ := s.UsernameExists(ctx, in.Username); taken {
				return nil, ErrDuplicateUsername
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UsernameExists reports whether the username is taken
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	defer prometheus.TrackDBOperation("username_exists")(time.Now())

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

// Authenticate returns the user when the password matches its stored hash
func (s *Store) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID loads a user by primary key
func (s *Store) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("get_user")(time.Now())

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByUsername loads a user by its unique username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	defer prometheus.TrackDBOperation("get_user")(time.Now())

	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of the patch
func (s *Store) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*model.User, error) {
	defer prometheus.TrackDBOperation("update_user")(time.Now())

	var user model.User
	db := s.db.WithContext(ctx)
	if err := db.First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}

	updates := map[string]interface{}{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Email != nil {
		updates["email"] = optionalEmail(*patch.Email)
	}
	if patch.Intro != nil {
		updates["intro"] = *patch.Intro
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := db.First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// usernames resolves owner ids to usernames in one query
func usernames(db *gorm.DB, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []model.User
	if err := db.Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
