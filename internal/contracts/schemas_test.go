package contracts

import "testing"

func TestValidateEvent(t *testing.T) {
	t.Run("валидное событие listing.created проходит", func(t *testing.T) {
		body := []byte(`{
			"listing_id": "3b8c9f4e-9a1f-4a56-b7d1-0f2a4c8e6d12",
			"latitude": 18.52,
			"longitude": 73.85,
			"city": "Pune"
		}`)
		if err := ValidateEvent("ListingCreatedEvent", "1.0.0", body); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("событие без listing_id отклоняется", func(t *testing.T) {
		body := []byte(`{"city": "Pune"}`)
		if err := ValidateEvent("ListingCreatedEvent", "1.0.0", body); err == nil {
			t.Error("expected validation error for a missing listing_id")
		}
	})

	t.Run("широта вне диапазона отклоняется", func(t *testing.T) {
		body := []byte(`{"listing_id": "3b8c9f4e-9a1f-4a56-b7d1-0f2a4c8e6d12", "latitude": 91}`)
		if err := ValidateEvent("ListingCreatedEvent", "1.0.0", body); err == nil {
			t.Error("expected validation error for an out-of-range latitude")
		}
	})

	t.Run("валидное событие favorite.added проходит", func(t *testing.T) {
		body := []byte(`{
			"user_id": "77f0c4b2-2b4e-4f53-9d0a-64e1c32a7b90",
			"listing_id": "3b8c9f4e-9a1f-4a56-b7d1-0f2a4c8e6d12"
		}`)
		if err := ValidateEvent("FavoriteAddedEvent", "1.0.0", body); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("событие favorite.added без user_id отклоняется", func(t *testing.T) {
		body := []byte(`{"listing_id": "3b8c9f4e-9a1f-4a56-b7d1-0f2a4c8e6d12"}`)
		if err := ValidateEvent("FavoriteAddedEvent", "1.0.0", body); err == nil {
			t.Error("expected validation error for a missing user_id")
		}
	})

	t.Run("неизвестная схема дает ошибку", func(t *testing.T) {
		if err := ValidateEvent("UnknownEvent", "1.0.0", []byte(`{}`)); err == nil {
			t.Error("expected an error for an unregistered schema")
		}
	})

	t.Run("невалидный JSON дает ошибку", func(t *testing.T) {
		if err := ValidateEvent("ListingCreatedEvent", "1.0.0", []byte(`{broken`)); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})
}
