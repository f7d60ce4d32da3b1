package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"wordduel/db"
	"wordduel/models"
)

const usersCollection = "users"

// ProfileCache - кеш профилей. Профили после регистрации не меняются,
// поэтому инвалидация не нужна
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (models.User, bool)
	SetProfile(ctx context.Context, user models.User)
}

// UserRepository - профили пользователей в коллекции users
type UserRepository struct {
	store db.Store
	cache ProfileCache
}

func NewUserRepository(store db.Store, cache ProfileCache) *UserRepository {
	return &UserRepository{store: store, cache: cache}
}

// AddUser сохраняет профиль под uid, выданным identity-провайдером
func (r *UserRepository) AddUser(ctx context.Context, user models.User) error {
	data := map[string]any{
		"name":  user.Name,
		"email": user.Email,
	}
	if user.AppUserID != "" {
		data["appUserId"] = user.AppUserID
	}
	if err := r.store.Set(ctx, usersCollection, user.UserID, data); err != nil {
		log.Printf("Error inserting user %s: %v", user.UserID, err)
		return &CreationError{Entity: "user", Err: err}
	}
	return nil
}

// GetUser возвращает профиль; found=false, если документа нет
func (r *UserRepository) GetUser(ctx context.Context, userID string) (models.User, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return models.User{}, false, nil
	}
	if r.cache != nil {
		if user, ok := r.cache.GetProfile(ctx, userID); ok {
			return user, true, nil
		}
	}

	snap, err := r.store.Get(ctx, usersCollection, userID)
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if !snap.Exists {
		return models.User{}, false, nil
	}
	var user models.User
	if err := snap.Decode(&user); err != nil {
		return models.User{}, false, err
	}
	user.UserID = userID

	if r.cache != nil {
		r.cache.SetProfile(ctx, user)
	}
	return user, true, nil
}

// FindUserByAppUserID ищет пользователя по внешнему имени.
// ResultOK - найден, ResultRejected - нет такого, ResultFailed - ошибка запроса
func (r *UserRepository) FindUserByAppUserID(ctx context.Context, appUserID string) (models.User, ResultCode) {
	snaps, err := r.store.Where(ctx, usersCollection, db.Eq("appUserId", appUserID))
	if err != nil {
		log.Printf("Error searching user by appUserId %s: %v", appUserID, err)
		return models.User{}, ResultFailed
	}
	if len(snaps) == 0 {
		return models.User{}, ResultRejected
	}
	var user models.User
	if err := snaps[0].Decode(&user); err != nil {
		log.Printf("Error decoding user %s: %v", snaps[0].ID, err)
		return models.User{}, ResultFailed
	}
	user.UserID = snaps[0].ID
	return user, ResultOK
}
