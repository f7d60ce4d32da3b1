package services

import (
	"encoding/json"
	"sync"

	"wordduel/models"

	"github.com/gorilla/websocket"
)

// WSConnManager - открытые websocket соединения по пользователям
type WSConnManager struct {
	mu    sync.RWMutex
	users map[string][]*websocket.Conn
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[string][]*websocket.Conn),
	}
}

func (m *WSConnManager) Add(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append(m.users[userID], conn)
}

func (m *WSConnManager) Remove(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns := m.users[userID]
	for i, c := range conns {
		if c == conn {
			m.users[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.users[userID]) == 0 {
		delete(m.users, userID)
	}
}

// Connections - число открытых соединений пользователя
func (m *WSConnManager) Connections(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users[userID])
}

// Send пишет сообщение во все соединения пользователя. websocket.Conn
// допускает одного писателя, поэтому запись идёт под эксклюзивной блокировкой
func (m *WSConnManager) Send(userID string, message []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.users[userID] {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

// Push отправляет уведомление о дуэли получателю
func (m *WSConnManager) Push(notification models.DuelNotification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	m.Send(notification.UserID, data)
	return nil
}
