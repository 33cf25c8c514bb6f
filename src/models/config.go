package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Ingestion MIngestionConfig `yaml:"ingestion"`
	Analytics MAnalyticsConfig `yaml:"analytics"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"schema"` // Postgres only
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

type MIngestionConfig struct {
	Source          string   `yaml:"source"`
	BaseURL         string   `yaml:"base_url"`
	Tickers         []string `yaml:"tickers"`
	StartDate       string   `yaml:"start_date"` // inclusive, YYYY-MM-DD
	EndDate         string   `yaml:"end_date"`   // exclusive, YYYY-MM-DD
	SnapshotPath    string   `yaml:"snapshot_path"`
	MetricsTextfile string   `yaml:"metrics_textfile"`
}

type MAnalyticsConfig struct {
	MovingAverageWindows []int `yaml:"moving_average_windows"`
	DefaultSelectionSize int   `yaml:"default_selection_size"`
}
