package repository

import (
	"eventhub/data/models"
	"fmt"
	"strconv"
	"strings"
)

// operatorSuffixes maps a query-parameter key suffix to its SQL operator.
// A key without a suffix means equality, e.g. paid=true; a suffixed key
// applies the operator to the stripped field name, e.g. eventDate_gte=...
var operatorSuffixes = []struct {
	suffix   string
	operator string
}{
	{"_ne", "!="},
	{"_lte", "<="},
	{"_gte", ">="},
	{"_lt", "<"},
	{"_gt", ">"},
	{"_contains", "ILIKE"},
	{"_anyOf", "IN"},
}

// buildQueryClauses constructs the WHERE/ORDER BY/LIMIT OFFSET tail of a
// select over the model's table from URL query parameters. Field names are
// the model's JSON tags; sortBy takes a field name with an optional leading
// "-" for descending order. It returns the finished sql string, the values to
// be passed alongside the query, and the requested page size.
func buildQueryClauses(queryParams map[string]string, m models.Model) (string, []interface{}, int, error) {
	jsonMap := models.MapJsonTagsToDB(m)

	whereClause, values, phIndex, err := buildWhereClause(queryParams, jsonMap)
	if err != nil {
		return "", nil, 0, err
	}

	sort, order, err := buildSortingClause(queryParams, jsonMap)
	if err != nil {
		return "", nil, 0, err
	}
	orderClause := fmt.Sprintf("ORDER BY %s %s", sort, order)

	limit, offset, err := buildPaginationClause(queryParams)
	if err != nil {
		return "", nil, 0, err
	}
	paginationClause := fmt.Sprintf("LIMIT $%d OFFSET $%d", phIndex, phIndex+1)
	values = append(values, limit, offset)

	var clauses string
	if whereClause != "" {
		clauses = fmt.Sprintf("%s %s %s", whereClause, orderClause, paginationClause)
	} else {
		clauses = fmt.Sprintf("%s %s", orderClause, paginationClause)
	}

	return clauses, values, limit, nil
}

func buildWhereClause(queryParams map[string]string, jsonMap map[string]string) (string, []interface{}, int, error) {
	whereClauseParts := []string{}
	values := []interface{}{}
	phIndex := 1

	for key, value := range queryParams {
		// handled by the sorting and pagination builders
		if key == "sortBy" || key == "limit" || key == "offset" {
			continue
		}

		operator := "="
		for _, op := range operatorSuffixes {
			if strings.HasSuffix(key, op.suffix) {
				operator = op.operator
				key = strings.TrimSuffix(key, op.suffix)
				break
			}
		}

		dbColumn, ok := jsonMap[key]
		if !ok || dbColumn == "" {
			return "", nil, 0, fmt.Errorf("invalid query parameter: %s", key)
		}

		switch operator {
		case "IN":
			// the IN list is of variable length, one placeholder per element
			elems := strings.Split(value, ",")
			ph := make([]string, len(elems))
			for i, elem := range elems {
				ph[i] = fmt.Sprintf("$%d", phIndex)
				values = append(values, convertValueIfNumeric(elem))
				phIndex++
			}
			whereClauseParts = append(whereClauseParts,
				fmt.Sprintf("%s IN (%s)", dbColumn, strings.Join(ph, ",")))
		case "ILIKE":
			whereClauseParts = append(whereClauseParts, fmt.Sprintf("%s ILIKE $%d", dbColumn, phIndex))
			values = append(values, "%"+value+"%")
			phIndex++
		default:
			whereClauseParts = append(whereClauseParts, fmt.Sprintf("%s %s $%d", dbColumn, operator, phIndex))
			values = append(values, convertValueIfNumeric(value))
			phIndex++
		}
	}

	whereClause := ""
	if len(whereClauseParts) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauseParts, " AND ")
	}

	return whereClause, values, phIndex, nil
}

func buildSortingClause(queryParams map[string]string, jsonMap map[string]string) (string, string, error) {
	sort := queryParams["sortBy"]
	order := "ASC"
	if strings.HasPrefix(sort, "-") {
		order = "DESC"
		sort = strings.TrimPrefix(sort, "-")
	}
	if sort == "" {
		sort = "id"
	}

	dbColumn, ok := jsonMap[sort]
	if !ok || dbColumn == "" {
		return "", "", fmt.Errorf("invalid sort value: %v", sort)
	}

	return dbColumn, order, nil
}

func buildPaginationClause(queryParams map[string]string) (int, int, error) {
	limit := 10
	offset := 0
	if l, ok := queryParams["limit"]; ok {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			return 0, 0, fmt.Errorf("pagination err; limit must be a number: %v", err)
		}
	}
	if o, ok := queryParams["offset"]; ok {
		var err error
		offset, err = strconv.Atoi(o)
		if err != nil {
			return 0, 0, fmt.Errorf("pagination err; offset must be a number: %v", err)
		}
	}
	return limit, offset, nil
}

func convertValueIfNumeric(value string) interface{} {
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	} else if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}
	return value
}
