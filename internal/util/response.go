package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// ValidationError carries per-field messages next to the summary.
func ValidationError(message string, fields map[string]string) Envelope {
	if len(fields) == 0 {
		return Error(message)
	}
	return Envelope{"error": message, "fields": fields}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

func Page(key string, items any, total int64, limit, offset int) Envelope {
	return Envelope{
		key:      items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
}
