package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "authconsole"
)

// Каналы Pub/Sub (события действий администратора)
const (
	RedisChanActions = RedisNamespace + ":actions"
)

// ActionChannel — канал конкретного действия: authconsole:actions:user.delete
func ActionChannel(action string) string {
	return fmt.Sprintf("%s:%s", RedisChanActions, action)
}
