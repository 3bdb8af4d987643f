package scoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// fakeGeoPort позволяет подставить ответ источника геоданных и считает вызовы.
// Счетчик атомарный: CalculateAll дергает порт из параллельных горутин.
type fakeGeoPort struct {
	calls atomic.Int32
	fn    func(filters []port.TagFilter) ([]port.GeoFeature, error)
}

func (f *fakeGeoPort) FeaturesAround(_ context.Context, _ domain.Coordinate, _ float64, filters []port.TagFilter) ([]port.GeoFeature, error) {
	f.calls.Add(1)
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(filters)
}

type fakeAirPort struct {
	calls atomic.Int32
	pm25  *float64
	err   error
}

func (f *fakeAirPort) NearestPM25(_ context.Context, _ domain.Coordinate, _ float64) (*float64, error) {
	f.calls.Add(1)
	return f.pm25, f.err
}

func mustCoordinate(t *testing.T, lat, lon float64) domain.Coordinate {
	t.Helper()
	c, err := domain.NewCoordinate(lat, lon)
	if err != nil {
		t.Fatalf("NewCoordinate(%v, %v): %v", lat, lon, err)
	}
	return c
}

func featureAt(c domain.Coordinate, tags map[string]string) port.GeoFeature {
	return port.GeoFeature{Coordinate: c, Tags: tags}
}

// northOf сдвигает точку на север на заданное число метров.
func northOf(t *testing.T, c domain.Coordinate, meters float64) domain.Coordinate {
	t.Helper()
	const metersPerLatDegree = 111194.93
	return mustCoordinate(t, c.Latitude+meters/metersPerLatDegree, c.Longitude)
}

func TestAmenityScore(t *testing.T) {
	center := mustCoordinate(t, 18.52, 73.85)

	t.Run("пустой радиус дает ноль, все категории not found", func(t *testing.T) {
		geo := &fakeGeoPort{}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.AmenityScore(context.Background(), center)
		if score != 0 {
			t.Errorf("expected score 0, got %d", score)
		}
		if len(details) != 7 {
			t.Errorf("expected 7 categories in details, got %d", len(details))
		}
		for key, d := range details {
			if d.Found {
				t.Errorf("category %s should not be found", key)
			}
		}
		// По одному запросу на категорию.
		if got := geo.calls.Load(); got != 7 {
			t.Errorf("expected 7 geo calls, got %d", got)
		}
	})

	t.Run("одна категория вплотную дает свою долю веса", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(filters []port.TagFilter) ([]port.GeoFeature, error) {
			if len(filters) == 1 && filters[0].Key == "amenity" && filters[0].Value == "hospital" {
				return []port.GeoFeature{featureAt(center, map[string]string{"amenity": "hospital"})}, nil
			}
			return nil, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.AmenityScore(context.Background(), center)
		// Больница с нулевой дистанцией: round(100/7) = 14, остальные в знаменателе.
		if score != 14 {
			t.Errorf("expected score 14, got %d", score)
		}
		if !details["hospital"].Found {
			t.Error("hospital should be found")
		}
		if details["hospital"].DistanceMeters == nil || *details["hospital"].DistanceMeters != 0 {
			t.Errorf("expected zero distance for hospital, got %v", details["hospital"].DistanceMeters)
		}
	})

	t.Run("больница в 500 метрах дает ослабленный вклад", func(t *testing.T) {
		hospital := northOf(t, center, 500)
		geo := &fakeGeoPort{fn: func(filters []port.TagFilter) ([]port.GeoFeature, error) {
			if filters[0].Value == "hospital" {
				return []port.GeoFeature{featureAt(hospital, map[string]string{"amenity": "hospital"})}, nil
			}
			return nil, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.AmenityScore(context.Background(), center)
		// round((100/7) * (1 - 500/2000)) = 11.
		if score != 11 {
			t.Errorf("expected score 11, got %d", score)
		}
		d := details["hospital"].DistanceMeters
		if d == nil || *d < 499 || *d > 501 {
			t.Errorf("expected ~500m distance for hospital, got %v", d)
		}
	})

	t.Run("вклад не растет с удалением объекта", func(t *testing.T) {
		scoreAt := func(meters float64) int {
			point := northOf(t, center, meters)
			geo := &fakeGeoPort{fn: func(filters []port.TagFilter) ([]port.GeoFeature, error) {
				if filters[0].Value == "hospital" {
					return []port.GeoFeature{featureAt(point, map[string]string{"amenity": "hospital"})}, nil
				}
				return nil, nil
			}}
			engine := NewEngine(geo, &fakeAirPort{})
			score, _ := engine.AmenityScore(context.Background(), center)
			return score
		}

		near, far := scoreAt(500), scoreAt(1500)
		if near < far {
			t.Errorf("score must not grow with distance: %d at 500m vs %d at 1500m", near, far)
		}
		// На таком разрыве дистанций вклады различимы и после округления.
		if near == far {
			t.Errorf("expected distinct scores at 500m and 1500m, got %d for both", near)
		}
	})

	t.Run("каждой категории соответствует тег-фильтр", func(t *testing.T) {
		for _, key := range domain.AmenityCategoryKeys {
			if _, ok := amenityFilters[key]; !ok {
				t.Errorf("no tag filter for category %s", key)
			}
		}
		if len(amenityFilters) != len(domain.AmenityCategoryKeys) {
			t.Errorf("expected %d filters, got %d", len(domain.AmenityCategoryKeys), len(amenityFilters))
		}
	})

	t.Run("все категории вплотную дают максимум", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(filters []port.TagFilter) ([]port.GeoFeature, error) {
			return []port.GeoFeature{featureAt(center, map[string]string{filters[0].Key: filters[0].Value})}, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, _ := engine.AmenityScore(context.Background(), center)
		if score != 100 {
			t.Errorf("expected score 100, got %d", score)
		}
	})

	t.Run("ошибка по одной категории не валит расчет", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(filters []port.TagFilter) ([]port.GeoFeature, error) {
			if filters[0].Value == "school" {
				return nil, errors.New("overpass timeout")
			}
			return []port.GeoFeature{featureAt(center, map[string]string{filters[0].Key: filters[0].Value})}, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.AmenityScore(context.Background(), center)
		// 6 из 7 категорий по полному весу: round(6*100/7) = 86.
		if score != 86 {
			t.Errorf("expected score 86, got %d", score)
		}
		if details["school"].Found {
			t.Error("school should be counted as not found after an error")
		}
	})
}

func TestEnvironmentScore(t *testing.T) {
	center := mustCoordinate(t, 18.52, 73.85)

	t.Run("насыщение зеленью без дорог и промзон дает максимум", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			features := make([]port.GeoFeature, 0, 8)
			for i := 0; i < 8; i++ {
				features = append(features, featureAt(center, map[string]string{"leisure": "park"}))
			}
			return features, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.EnvironmentScore(context.Background(), center)
		if score != 100 {
			t.Errorf("expected score 100, got %d", score)
		}
		if details.GreenFeatures != 8 {
			t.Errorf("expected 8 green features, got %d", details.GreenFeatures)
		}
		if details.NearestMajorRoadMeters != nil {
			t.Error("expected no major road in details")
		}
	})

	t.Run("промзона и дорога вплотную режут оценку", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			return []port.GeoFeature{
				featureAt(center, map[string]string{"leisure": "park"}),
				featureAt(center, map[string]string{"leisure": "park"}),
				featureAt(center, map[string]string{"leisure": "park"}),
				featureAt(center, map[string]string{"leisure": "park"}),
				featureAt(center, map[string]string{"landuse": "industrial"}),
				featureAt(center, map[string]string{"highway": "primary"}),
			}, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.EnvironmentScore(context.Background(), center)
		// round(100 * (0.6*4/8 + 0.25*0 + 0.15*0)) = 30.
		if score != 30 {
			t.Errorf("expected score 30, got %d", score)
		}
		if details.IndustrialFeatures != 1 {
			t.Errorf("expected 1 industrial feature, got %d", details.IndustrialFeatures)
		}
		if details.NearestMajorRoadMeters == nil || *details.NearestMajorRoadMeters != 0 {
			t.Errorf("expected zero road distance, got %v", details.NearestMajorRoadMeters)
		}
	})

	t.Run("отказ источника дает нейтральный дефолт", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			return nil, errors.New("overpass unavailable")
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.EnvironmentScore(context.Background(), center)
		if score != defaultSubScore {
			t.Errorf("expected default score %d, got %d", defaultSubScore, score)
		}
		if details.GreenFeatures != 0 || details.IndustrialFeatures != 0 {
			t.Error("expected empty details on failure")
		}
	})
}

func TestSafetyScore(t *testing.T) {
	center := mustCoordinate(t, 18.52, 73.85)

	t.Run("без сигналов остается только базовый уровень", func(t *testing.T) {
		geo := &fakeGeoPort{}
		engine := NewEngine(geo, &fakeAirPort{})

		score, _ := engine.SafetyScore(context.Background(), center)
		// round(100 * 0.15*0.5) = 8.
		if score != 8 {
			t.Errorf("expected score 8, got %d", score)
		}
	})

	t.Run("участок полиции вплотную дает близость и долю количества", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			return []port.GeoFeature{featureAt(center, map[string]string{"amenity": "police"})}, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.SafetyScore(context.Background(), center)
		// round(100 * (0.4*1 + 0.2*(1/3) + 0.15*0.5)) = 54.
		if score != 54 {
			t.Errorf("expected score 54, got %d", score)
		}
		if details.PoliceStations != 1 {
			t.Errorf("expected 1 police station, got %d", details.PoliceStations)
		}
		if details.NearestPoliceMeters == nil {
			t.Error("expected nearest police distance to be set")
		}
	})

	t.Run("ночные заведения штрафуют оценку", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			features := []port.GeoFeature{featureAt(center, map[string]string{"amenity": "police"})}
			for i := 0; i < 5; i++ {
				features = append(features, featureAt(center, map[string]string{"amenity": "bar"}))
			}
			return features, nil
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, details := engine.SafetyScore(context.Background(), center)
		// Как выше, минус полный штраф 0.1: round(100 * 0.4417) = 44.
		if score != 44 {
			t.Errorf("expected score 44, got %d", score)
		}
		if details.NightlifeSpots != 5 {
			t.Errorf("expected 5 nightlife spots, got %d", details.NightlifeSpots)
		}
	})

	t.Run("отказ источника дает нейтральный дефолт", func(t *testing.T) {
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			return nil, errors.New("overpass unavailable")
		}}
		engine := NewEngine(geo, &fakeAirPort{})

		score, _ := engine.SafetyScore(context.Background(), center)
		if score != defaultSubScore {
			t.Errorf("expected default score %d, got %d", defaultSubScore, score)
		}
	})
}

func TestPollutionScore(t *testing.T) {
	center := mustCoordinate(t, 18.52, 73.85)

	t.Run("чистый воздух дает максимум", func(t *testing.T) {
		pm := 0.0
		engine := NewEngine(&fakeGeoPort{}, &fakeAirPort{pm25: &pm})

		score, details := engine.PollutionScore(context.Background(), center)
		if score != 100 {
			t.Errorf("expected score 100, got %d", score)
		}
		if details.DataSource != domain.PollutionSourceMeasured {
			t.Errorf("expected measured source, got %s", details.DataSource)
		}
	})

	t.Run("значение выше потолка обнуляет оценку", func(t *testing.T) {
		pm := 300.0
		engine := NewEngine(&fakeGeoPort{}, &fakeAirPort{pm25: &pm})

		score, _ := engine.PollutionScore(context.Background(), center)
		if score != 0 {
			t.Errorf("expected score 0, got %d", score)
		}
	})

	t.Run("середина шкалы дает половину баллов", func(t *testing.T) {
		pm := 125.0
		engine := NewEngine(&fakeGeoPort{}, &fakeAirPort{pm25: &pm})

		score, _ := engine.PollutionScore(context.Background(), center)
		if score != 50 {
			t.Errorf("expected score 50, got %d", score)
		}
	})

	t.Run("без измерений оценка выводится от environment score", func(t *testing.T) {
		// Геоданные пустые: environment = round(100*(0.25+0.15)) = 40.
		engine := NewEngine(&fakeGeoPort{}, &fakeAirPort{pm25: nil})

		score, details := engine.PollutionScore(context.Background(), center)
		if score != 60 {
			t.Errorf("expected estimated score 60, got %d", score)
		}
		if details.DataSource != domain.PollutionSourceEstimated {
			t.Errorf("expected estimated source, got %s", details.DataSource)
		}
		if details.PM25 != nil {
			t.Error("estimated score must not carry a PM2.5 value")
		}
	})

	t.Run("отказ источника дает нейтральный дефолт", func(t *testing.T) {
		engine := NewEngine(&fakeGeoPort{}, &fakeAirPort{err: errors.New("openaq down")})

		score, details := engine.PollutionScore(context.Background(), center)
		if score != defaultSubScore {
			t.Errorf("expected default score %d, got %d", defaultSubScore, score)
		}
		if details.DataSource != domain.PollutionSourceDefault {
			t.Errorf("expected default source, got %s", details.DataSource)
		}
	})
}

func TestCalculateAll(t *testing.T) {
	center := mustCoordinate(t, 18.52, 73.85)

	t.Run("итог сводится по фиксированным весам", func(t *testing.T) {
		// Геоданные отказывают: amenity = 0, environment = 50, safety = 50.
		// PM2.5 = 125: pollution = 50.
		geo := &fakeGeoPort{fn: func(_ []port.TagFilter) ([]port.GeoFeature, error) {
			return nil, errors.New("overpass unavailable")
		}}
		pm := 125.0
		engine := NewEngine(geo, &fakeAirPort{pm25: &pm})

		scores := engine.CalculateAll(context.Background(), center)

		if scores.AmenityScore != 0 {
			t.Errorf("expected amenity 0, got %d", scores.AmenityScore)
		}
		if scores.EnvironmentScore != defaultSubScore {
			t.Errorf("expected environment %d, got %d", defaultSubScore, scores.EnvironmentScore)
		}
		if scores.SafetyScore != defaultSubScore {
			t.Errorf("expected safety %d, got %d", defaultSubScore, scores.SafetyScore)
		}
		if scores.PollutionScore != 50 {
			t.Errorf("expected pollution 50, got %d", scores.PollutionScore)
		}

		// round(0.30*0 + 0.25*50 + 0.25*50 + 0.20*50) = 35.
		if scores.OverallScore != 35 {
			t.Errorf("expected overall 35, got %d", scores.OverallScore)
		}
		if scores.CalculatedAt.IsZero() {
			t.Error("CalculatedAt must be set")
		}
	})
}

func TestDistanceMeters(t *testing.T) {
	t.Run("нулевая дистанция до самой себя", func(t *testing.T) {
		a := mustCoordinate(t, 18.52, 73.85)
		if d := DistanceMeters(a, a); d != 0 {
			t.Errorf("expected 0, got %v", d)
		}
	})

	t.Run("градус широты это примерно 111 км", func(t *testing.T) {
		a := mustCoordinate(t, 0, 0)
		b := mustCoordinate(t, 1, 0)
		d := DistanceMeters(a, b)
		if d < 111000 || d > 111300 {
			t.Errorf("expected ~111.2km, got %v", d)
		}
	})

	t.Run("дистанция симметрична", func(t *testing.T) {
		a := mustCoordinate(t, 18.52, 73.85)
		b := mustCoordinate(t, 19.07, 72.87)
		if DistanceMeters(a, b) != DistanceMeters(b, a) {
			t.Error("distance must be symmetric")
		}
	})
}
