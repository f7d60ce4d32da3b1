package services

import (
	"context"
	"fmt"
	"log"

	"wordduel/db"
	"wordduel/models"
)

const (
	friendsCollection    = "friends"
	friendListCollection = "friendlist"
)

// FriendshipLedger - направленные записи дружбы friends/<source>/friendlist/<target>
type FriendshipLedger struct {
	store db.Store
}

func NewFriendshipLedger(store db.Store) *FriendshipLedger {
	return &FriendshipLedger{store: store}
}

func friendList(sourceUserID string) string {
	return db.Path(friendsCollection, sourceUserID, friendListCollection)
}

// AddEdge создаёт запись source -> target. Существующую запись не трогает
func (l *FriendshipLedger) AddEdge(ctx context.Context, sourceUserID, targetUserID, peerName string, status models.FriendStatus, duelID string) error {
	created, err := l.store.Create(ctx, friendList(sourceUserID), targetUserID, map[string]any{
		"name":   peerName,
		"status": string(status),
		"duelId": duelID,
	})
	if err != nil {
		return fmt.Errorf("failed to add friend %s -> %s: %w", sourceUserID, targetUserID, err)
	}
	if !created {
		log.Printf("Friend entry %s -> %s already exists, left untouched", sourceUserID, targetUserID)
	}
	return nil
}

// UpdateStatus перезаписывает только статус записи
func (l *FriendshipLedger) UpdateStatus(ctx context.Context, sourceUserID, targetUserID string, status models.FriendStatus) error {
	err := l.store.Update(ctx, friendList(sourceUserID), targetUserID, map[string]any{
		"status": string(status),
	})
	if err != nil {
		return fmt.Errorf("failed to update friend status %s -> %s: %w", sourceUserID, targetUserID, err)
	}
	return nil
}

// QueryByStatus возвращает друзей пользователя с заданным статусом
func (l *FriendshipLedger) QueryByStatus(ctx context.Context, sourceUserID string, status models.FriendStatus) ([]models.FriendSummary, error) {
	snaps, err := l.store.Where(ctx, friendList(sourceUserID), db.Eq("status", string(status)))
	if err != nil {
		return nil, fmt.Errorf("failed to query friends of %s: %w", sourceUserID, err)
	}
	friends := make([]models.FriendSummary, 0, len(snaps))
	for _, snap := range snaps {
		var edge models.FriendshipEdge
		if err := snap.Decode(&edge); err != nil {
			return nil, err
		}
		friends = append(friends, models.FriendSummary{ID: snap.ID, Name: edge.Name, DuelID: edge.DuelID})
	}
	return friends, nil
}

// Exists проверяет наличие записи source -> target
func (l *FriendshipLedger) Exists(ctx context.Context, sourceUserID, targetUserID string) (bool, error) {
	snap, err := l.store.Get(ctx, friendList(sourceUserID), targetUserID)
	if err != nil {
		return false, fmt.Errorf("failed to check friend %s -> %s: %w", sourceUserID, targetUserID, err)
	}
	return snap.Exists, nil
}

// EdgeDetails возвращает статус и дуэль записи source -> target
func (l *FriendshipLedger) EdgeDetails(ctx context.Context, sourceUserID, targetUserID string) (models.FriendshipDetails, error) {
	snap, err := l.store.Get(ctx, friendList(sourceUserID), targetUserID)
	if err != nil {
		return models.FriendshipDetails{}, fmt.Errorf("failed to get friendship %s -> %s: %w", sourceUserID, targetUserID, err)
	}
	if !snap.Exists {
		return models.FriendshipDetails{}, nil
	}
	var edge models.FriendshipEdge
	if err := snap.Decode(&edge); err != nil {
		return models.FriendshipDetails{}, err
	}
	return models.FriendshipDetails{Found: true, Status: edge.Status, DuelID: edge.DuelID}, nil
}
