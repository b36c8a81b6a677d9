package models

// ModelInfo describes a backend model the user can pick for answers.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModelNames returns just the names, in order.
func ModelNames(list []ModelInfo) []string {
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.Name)
	}
	return names
}
