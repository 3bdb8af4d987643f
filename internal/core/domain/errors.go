package domain

import "errors"

// Сентинельные ошибки ядра. Адаптеры и обработчики проверяют их через errors.Is.
var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrListingNotFound   = errors.New("listing not found")
	ErrUserNotFound      = errors.New("user not found")

	// ErrListingHasNoCoordinates - у объявления не заполнены координаты,
	// пересчет оценок локации для него невозможен.
	ErrListingHasNoCoordinates = errors.New("listing has no coordinates")
)
