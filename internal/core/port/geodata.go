package port

import (
	"context"

	"recommendation-service/internal/core/domain"
)

// TagFilter - фильтр "ключ=значение" по тегам геоданных (стиль OSM).
// Если Regex == true, Value трактуется как регулярное выражение
// (например highway~"primary|secondary|tertiary|trunk").
type TagFilter struct {
	Key   string
	Value string
	Regex bool
}

// GeoFeature - одна найденная фича: точка или центроид полигона плюс теги.
type GeoFeature struct {
	Coordinate domain.Coordinate
	Tags       map[string]string
}

// GeoFeaturesPort - контракт внешнего источника точек интереса и
// землепользования/дорог. Один вызов - один запрос, без ретраев:
// политика "деградация до дефолта" реализуется выше, в скорерах.
type GeoFeaturesPort interface {
	FeaturesAround(ctx context.Context, center domain.Coordinate, radiusMeters float64, filters []TagFilter) ([]GeoFeature, error)
}

// AirQualityPort - контракт внешнего источника качества воздуха.
type AirQualityPort interface {
	// NearestPM25 возвращает ближайшее измерение PM2.5 в радиусе
	// или nil, если измерений нет (это не ошибка).
	NearestPM25(ctx context.Context, center domain.Coordinate, radiusMeters float64) (*float64, error)
}
