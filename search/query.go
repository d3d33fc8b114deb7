package search

import (
	"strings"

	"app-registry-cms/models"
)

var sortColumns = map[string]bool{"id": true, "updated_at": true}

// SortOrder normalizes the requested sort, falling back to updated_at desc.
func SortOrder(column, direction string) (string, string) {
	column = strings.ToLower(strings.TrimSpace(column))
	if !sortColumns[column] {
		column = "updated_at"
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "asc" {
		direction = "desc"
	}
	return column, direction
}

// BuildQuery translates the admin filters into a search body. Only drafts are
// ever matched. Empty filters add no clause.
func BuildQuery(index string, params models.SearchParams) map[string]interface{} {
	must := []interface{}{
		map[string]interface{}{
			"constant_score": map[string]interface{}{
				"filter": map[string]interface{}{
					"bool": map[string]interface{}{
						"must_not": map[string]interface{}{
							"exists": map[string]interface{}{"field": "draft_id"},
						},
					},
				},
			},
		},
	}

	if text := strings.TrimSpace(params.Text); text != "" {
		fields := []string{"name", "agencies", "contacts", "status"}
		if index == MobileAppIndex {
			fields = append(fields, "platform")
		}
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": fields,
			},
		})
	}
	if platform := strings.TrimSpace(params.Platform); platform != "" && index == MobileAppIndex {
		must = append(must, matchPhrase("platform", platform))
	}
	if status := strings.TrimSpace(params.Status); status != "" {
		if models.ContentStatus(status).Valid() {
			status = models.ContentStatus(status).Humanize()
		}
		must = append(must, matchPhrase("status", status))
	}
	if agency := strings.TrimSpace(params.Agency); agency != "" {
		must = append(must, matchPhrase("agencies", agency))
	}

	column, direction := SortOrder(params.SortColumn, params.SortDirection)
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []interface{}{
			map[string]interface{}{column: direction},
		},
	}
	if params.From > 0 {
		query["from"] = params.From
	}
	if params.Size > 0 {
		query["size"] = params.Size
	}
	return query
}

func matchPhrase(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"match_phrase": map[string]interface{}{field: value},
	}
}
