package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/store"
)

const tokenTTL = 24 * time.Hour

type RegisterParams struct {
	Email    string
	Username string
	Password string
	FullName string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (models.User, string, error) {
	if err := ValidateEmail(params.Email); err != nil {
		return models.User{}, "", err
	}
	if err := ValidateUsername(params.Username); err != nil {
		return models.User{}, "", err
	}
	if err := ValidatePassword(params.Password); err != nil {
		return models.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password failed: %w", err)
	}

	user := models.User{
		Email:        strings.ToLower(params.Email),
		Username:     params.Username,
		FullName:     params.FullName,
		PasswordHash: string(hash),
	}

	createdUser, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.User{}, "", conflictError("email or username already registered")
		}
		return models.User{}, "", fmt.Errorf("create user failed: %w", err)
	}

	token, err := s.CreateJWT(createdUser.Id)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return createdUser, token, nil
}

// Login accepts either the email or the username as the login name.
// Failures are reported uniformly so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, login string, password string) (models.User, string, error) {
	user, err := s.Store.GetUserByEmail(ctx, login)
	if err != nil {
		if !errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, "", fmt.Errorf("lookup user failed: %w", err)
		}
		user, err = s.Store.GetUserByUsername(ctx, login)
		if errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, "", unauthorizedError("wrong login or password")
		}
		if err != nil {
			return models.User{}, "", fmt.Errorf("lookup user failed: %w", err)
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", unauthorizedError("wrong login or password")
	}

	token, err := s.CreateJWT(user.Id)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return user, token, nil
}

func (s *Service) CreateJWT(userId string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userId,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) VerifyJWT(tokenString string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", time.Time{}, err
	}

	if !token.Valid {
		return "", time.Time{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, errors.New("invalid token claims")
	}

	userId, ok := claims["sub"].(string)
	if !ok {
		return "", time.Time{}, errors.New("missing sub claim")
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return "", time.Time{}, errors.New("missing exp claim")
	}
	expiry := time.Unix(int64(expFloat), 0)

	return userId, expiry, nil
}

// AuthenticateToken resolves a bearer token to its user. The identity comes
// exclusively from the verified sub claim; expired or tampered tokens are
// rejected by VerifyJWT.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (models.User, error) {
	if len(token) == 0 {
		return models.User{}, unauthorizedError("token not provided")
	}

	userId, _, err := s.VerifyJWT(token)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.Store.GetUser(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, unauthorizedError("unknown user")
		}
		return models.User{}, err
	}

	return user, nil
}

type ProfileUpdateParams struct {
	Email    *string
	Username *string
	Password *string
	FullName *string
}

func (s *Service) UpdateProfile(ctx context.Context, user models.User, params ProfileUpdateParams) (models.User, error) {
	var fields []string

	if params.Email != nil {
		if err := ValidateEmail(*params.Email); err != nil {
			return models.User{}, err
		}
		user.Email = strings.ToLower(*params.Email)
		fields = append(fields, "Email")
	}
	if params.Username != nil {
		if err := ValidateUsername(*params.Username); err != nil {
			return models.User{}, err
		}
		user.Username = *params.Username
		fields = append(fields, "Username")
	}
	if params.Password != nil {
		if err := ValidatePassword(*params.Password); err != nil {
			return models.User{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password failed: %w", err)
		}
		user.PasswordHash = string(hash)
		fields = append(fields, "PasswordHash")
	}
	if params.FullName != nil {
		user.FullName = *params.FullName
		fields = append(fields, "FullName")
	}

	if len(fields) == 0 {
		return user, nil
	}

	updated, err := s.Store.UpdateUser(ctx, user, fields)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.User{}, conflictError("email or username already registered")
		}
		return models.User{}, err
	}

	return updated, nil
}

type CleanupMessage struct {
	NoteId string `json:"noteId,omitempty"`
	UserId string `json:"userId,omitempty"`
}

func (s *Service) DeleteAccount(ctx context.Context, user models.User) error {
	if err := s.Store.DeleteUser(ctx, user); err != nil {
		return err
	}

	// Async side-effects - return to caller as soon as the store operation is done
	go func() {
		msg := CleanupMessage{UserId: user.Id}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := s.MQ.Send(context.Background(), string(msgBytes)); err != nil {
			log.Printf("Failed to enqueue user cleanup for %s: %v", user.Id, err)
		}
	}()

	return nil
}
