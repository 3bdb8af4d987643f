package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// GetLimitOrDefault читает query-параметр limit с заданным дефолтом.
func GetLimitOrDefault(r *http.Request, def int) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	limit := def
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, err
		}
	}
	return limit, nil
}
