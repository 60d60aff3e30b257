package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "manageros"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanRulesUpdate — сигнал "правила организации изменились",
	// по нему реплики консоли и дашборды сбрасывают локальные кэши.
	RedisChanRulesUpdate = RedisNamespace + ":rules:updated"

	// RedisChanExceptionsUpdate — после прогона evaluator или смены статуса
	// исключения: открытые дашборды перезапрашивают списки.
	RedisChanExceptionsUpdate = RedisNamespace + ":exceptions:updated"
)

// GetStatsCacheKey — ключ кэша сводки дашборда конкретной организации.
func GetStatsCacheKey(orgID string) string {
	return fmt.Sprintf("%s:stats:%s", RedisNamespace, orgID)
}
