package models

// DashboardStats is the aggregate view served on the dashboard. Broker
// callers get their own numbers; the roster fields are admin-only.
type DashboardStats struct {
	TotalLeads     int            `json:"total_leads"`
	LeadsToday     int            `json:"leads_today"`
	LeadsThisWeek  int            `json:"leads_this_week"`
	LeadsThisMonth int            `json:"leads_this_month"`
	LeadsByStatus  map[string]int `json:"leads_by_status"`
	LeadsBySource  map[string]int `json:"leads_by_source"`
	ConversionRate float64        `json:"conversion_rate"`

	UnassignedLeads  int               `json:"unassigned_leads,omitempty"`
	ActiveBrokers    int               `json:"active_brokers,omitempty"`
	BrokerLoadsToday []BrokerDailyLoad `json:"broker_loads_today,omitempty"`
}
