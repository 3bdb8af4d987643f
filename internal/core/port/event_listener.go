package port

import "context"

// EventListenerPort - жизненный цикл входящего слушателя событий.
type EventListenerPort interface {
	// Start блокируется до отмены контекста или фатальной ошибки.
	Start(ctx context.Context) error
	Close() error
}
