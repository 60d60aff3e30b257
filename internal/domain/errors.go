package domain

import "errors"

// Сентинелы слоя домена. Хендлеры маппят их в HTTP-коды.
var (
	// ErrNotFound покрывает и cross-tenant доступ: чужая организация
	// получает тот же ответ, что и несуществующий ID (без утечки факта существования).
	ErrNotFound = errors.New("not found or access denied")

	// ErrForbidden — у вызывающего нет прав на операцию (нужен admin/owner).
	ErrForbidden = errors.New("organization admin or owner role required")

	// ErrValidation — некорректный ввод: пустое имя, неизвестный тип правила,
	// конфиг не проходит схему своего типа.
	ErrValidation = errors.New("validation error")
)
