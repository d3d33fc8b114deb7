package search

func textField() map[string]interface{} {
	return map[string]interface{}{"type": "text", "analyzer": "english"}
}

// IndexSettings returns the create-index body for one index kind.
func IndexSettings(index string) map[string]interface{} {
	properties := map[string]interface{}{
		"id":         map[string]interface{}{"type": "integer"},
		"draft_id":   map[string]interface{}{"type": "integer"},
		"name":       textField(),
		"agencies":   textField(),
		"contacts":   textField(),
		"status":     textField(),
		"updated_at": map[string]interface{}{"type": "date"},
	}
	if index == MobileAppIndex {
		properties["platform"] = textField()
	}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{"number_of_shards": 1},
		},
		"mappings": map[string]interface{}{
			"dynamic":    "false",
			"properties": properties,
		},
	}
}
