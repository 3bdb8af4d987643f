package postgres_adapter

import (
	"fmt"
	"strings"

	"recommendation-service/internal/core/port"
)

// queryBuilder накапливает условия WHERE и позиционные аргументы.
type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addRawCondition(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applyListingFilter разбирает ListingFilter в условия запроса (все AND).
func applyListingFilter(filter port.ListingFilter) (string, []interface{}) {
	qb := newQueryBuilder()

	if len(filter.Statuses) > 0 {
		qb.addCondition("l.status = ANY($%d)", filter.Statuses)
	}
	if filter.CityPattern != "" {
		qb.addCondition("l.city ILIKE $%d", "%"+filter.CityPattern+"%")
	}
	if filter.MinOverallScore != nil {
		qb.addCondition("l.overall_score >= $%d", *filter.MinOverallScore)
	}
	if filter.CreatedAfter != nil {
		qb.addCondition("l.created_at >= $%d", *filter.CreatedAfter)
	}
	if len(filter.ExcludeIDs) > 0 {
		qb.addCondition("l.id != ALL($%d)", filter.ExcludeIDs)
	}

	return qb.build()
}

// applySimilarityFilter: тип, город и ценовой коридор соединяются OR
// (достаточно одного признака похожести), статус и исключения остаются AND.
func applySimilarityFilter(filter port.SimilarityFilter) (string, []interface{}) {
	qb := newQueryBuilder()

	qb.addCondition("l.status = $%d", "active")
	if len(filter.ExcludeIDs) > 0 {
		qb.addCondition("l.id != ALL($%d)", filter.ExcludeIDs)
	}

	var orParts []string
	if len(filter.Types) > 0 {
		orParts = append(orParts, fmt.Sprintf("l.property_type = ANY($%d)", qb.argId))
		qb.args = append(qb.args, filter.Types)
		qb.argId++
	}
	if len(filter.Cities) > 0 {
		orParts = append(orParts, fmt.Sprintf("l.city = ANY($%d)", qb.argId))
		qb.args = append(qb.args, filter.Cities)
		qb.argId++
	}
	if filter.PriceMin != nil && filter.PriceMax != nil {
		orParts = append(orParts, fmt.Sprintf("(l.price_amount >= $%d AND l.price_amount <= $%d)", qb.argId, qb.argId+1))
		qb.args = append(qb.args, *filter.PriceMin, *filter.PriceMax)
		qb.argId += 2
	}
	if len(orParts) > 0 {
		qb.addRawCondition("(" + strings.Join(orParts, " OR ") + ")")
	}

	return qb.build()
}

// orderClause переводит предопределенную сортировку в ORDER BY.
func orderClause(order port.ListingOrder) string {
	switch order {
	case port.OrderPopular:
		return "ORDER BY l.featured DESC, l.views DESC, l.inquiries_count DESC, l.created_at DESC"
	case port.OrderTrending:
		return "ORDER BY l.views DESC, l.inquiries_count DESC"
	case port.OrderByOverallScore:
		return "ORDER BY l.overall_score DESC NULLS LAST, l.featured DESC, l.created_at DESC"
	}
	return "ORDER BY l.created_at DESC"
}
