package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"wordduel/db"
	"wordduel/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const credentialsCollection = "credentials"

// ProfileInput - данные для заведения пользователя у identity-провайдера
type ProfileInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"name"`
	AppUserID   string `json:"appUserId,omitempty"`
}

// Identity - созданный пользователь: стабильный uid, имя и почта
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// IdentityProvider создаёт аутентифицируемого пользователя
type IdentityProvider interface {
	CreateUser(ctx context.Context, input ProfileInput) (Identity, error)
}

// LocalIdentityProvider хранит учётные записи в том же хранилище, пароль - argon2id
type LocalIdentityProvider struct {
	store db.Store
}

func NewLocalIdentityProvider(store db.Store) *LocalIdentityProvider {
	return &LocalIdentityProvider{store: store}
}

func (p *LocalIdentityProvider) CreateUser(ctx context.Context, input ProfileInput) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return Identity{}, fmt.Errorf("email and password are required")
	}

	existing, err := p.store.Where(db.WithPrimary(ctx), credentialsCollection, db.Eq("email", email))
	if err != nil {
		return Identity{}, fmt.Errorf("error checking email: %w", err)
	}
	if len(existing) > 0 {
		return Identity{}, ErrEmailTaken
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return Identity{}, err
	}

	credential := models.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  input.DisplayName,
		AppUserID:    input.AppUserID,
		PasswordHash: passwordHash,
	}
	created, err := p.store.Create(ctx, credentialsCollection, credential.UID, map[string]any{
		"uid":          credential.UID,
		"email":        credential.Email,
		"displayName":  credential.DisplayName,
		"appUserId":    credential.AppUserID,
		"passwordHash": credential.PasswordHash,
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to store credential: %w", err)
	}
	if !created {
		return Identity{}, fmt.Errorf("credential %s already exists", credential.UID)
	}

	log.Printf("Created identity %s for %s", credential.UID, credential.Email)
	return Identity{UID: credential.UID, DisplayName: credential.DisplayName, Email: credential.Email}, nil
}

// hashPassword возвращает salt$hash в hex
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error generating salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}
