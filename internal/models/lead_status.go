package models

// LeadStatusInfo is a catalog row describing one pipeline status,
// used by the frontend for labels and colors.
type LeadStatusInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}
