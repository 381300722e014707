package models

// FieldChange holds the before and after values of one updated field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// DiffChanges compares field representations before and after an update and
// returns the fields whose values differ. Callers populate the maps only
// with fields present in the update payload, so untouched fields are never
// reported.
func DiffChanges(before, after map[string]string) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for field, newValue := range after {
		oldValue := before[field]
		if oldValue != newValue {
			changes[field] = FieldChange{Old: oldValue, New: newValue}
		}
	}
	return changes
}
