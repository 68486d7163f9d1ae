package websocket

import (
	"sync"
	"time"
)

// HubMetrics — счётчики realtime-подсистемы одного экземпляра API
type HubMetrics struct {
	totalConnections  int64
	activeConnections int64
	activeUsers       int64
	eventsDelivered   int64
	eventsDropped     int64
	slowClientsClosed int64
	startTime         time.Time

	eventTypeCounts map[string]int64

	mu sync.RWMutex
}

// NewHubMetrics создает новый экземпляр метрик Hub
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{
		startTime:       time.Now(),
		eventTypeCounts: make(map[string]int64),
	}
}

func (m *HubMetrics) connected(activeUsers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
	m.activeUsers = int64(activeUsers)
}

func (m *HubMetrics) disconnected(activeUsers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
	m.activeUsers = int64(activeUsers)
}

func (m *HubMetrics) delivered(eventType string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDelivered += int64(count)
	m.eventTypeCounts[eventType] += int64(count)
}

func (m *HubMetrics) dropped(slowClient bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDropped++
	if slowClient {
		m.slowClientsClosed++
	}
}

// Snapshot возвращает копию метрик для отдачи в API
func (m *HubMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[string]int64, len(m.eventTypeCounts))
	for k, v := range m.eventTypeCounts {
		byType[k] = v
	}
	return map[string]interface{}{
		"total_connections":   m.totalConnections,
		"active_connections":  m.activeConnections,
		"active_users":        m.activeUsers,
		"events_delivered":    m.eventsDelivered,
		"events_dropped":      m.eventsDropped,
		"slow_clients_closed": m.slowClientsClosed,
		"event_type_counts":   byType,
		"uptime_seconds":      int64(time.Since(m.startTime).Seconds()),
	}
}
