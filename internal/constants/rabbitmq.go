package constants

// Обменник доменных событий платформы.
const (
	EventsExchange     = "realty.events"
	EventsExchangeType = "topic"
)

// Имена очередей
const (
	QueueListingCreated = "listing_created_scoring"
	QueueFavoriteAdded  = "favorite_added_preferences"
)

// Ключи маршрутизации
const (
	RoutingKeyListingCreated = "listing.created"
	RoutingKeyFavoriteAdded  = "favorite.added"

	RoutingKeyScoresUpdated = "listing.scores.updated"
)

// Инфраструктура ретраев очереди listing_created_scoring.
const (
	ListingCreatedRetryExchange = "listing_created_scoring_retry"
	ListingCreatedRetryQueue    = "listing_created_scoring_wait"
	ListingCreatedFinalDLX      = "listing_created_scoring_final_dlx"
	ListingCreatedFinalDLQ      = "listing_created_scoring_final_dlq"
	ListingCreatedDLQRoutingKey = "listing_created.dlq.key"
)

// Инфраструктура ретраев очереди favorite_added_preferences.
const (
	FavoriteAddedRetryExchange = "favorite_added_preferences_retry"
	FavoriteAddedRetryQueue    = "favorite_added_preferences_wait"
	FavoriteAddedFinalDLX      = "favorite_added_preferences_final_dlx"
	FavoriteAddedFinalDLQ      = "favorite_added_preferences_final_dlq"
	FavoriteAddedDLQRoutingKey = "favorite_added.dlq.key"
)
