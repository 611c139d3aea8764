package domain

// Dashboard is the seller overview returned by /dashboard.
type Dashboard struct {
	TotalProducts FlexString      `json:"total_product" yaml:"totalProducts"`
	TotalActive   FlexString      `json:"total_active_product" yaml:"totalActive"`
	TotalSold     FlexString      `json:"total_sale_product" yaml:"totalSold"`
	Posts         []DashboardPost `json:"posts" yaml:"posts"`
}

// DashboardPost is a product of the seller with its listing status.
type DashboardPost struct {
	Product    `yaml:",inline"`
	StatusText string `json:"status_text" yaml:"status"`
}

// Notification is one entry of the account notification feed.
type Notification struct {
	Title       string `json:"notification_title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Created     string `json:"created" yaml:"created"`
}
