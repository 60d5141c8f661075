package database

const (
	// DriverPostgres selects the PostgreSQL backend via lib/pq.
	DriverPostgres = "postgres"
	// DriverSQLite selects the embedded pure-Go SQLite backend.
	DriverSQLite = "sqlite"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the database file location for the sqlite driver.
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// DSN builds the driver-specific connection string.
func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return "user=" + c.User + " password=" + c.Password + " host=" + c.Host +
		" port=" + c.Port + " dbname=" + c.Name + " sslmode=" + c.SSLMode
}

// URL builds the migrate-compatible database URL for the configured driver.
func (c Config) URL() string {
	if c.Driver == DriverSQLite {
		return "sqlite://" + c.Path
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port +
		"/" + c.Name + "?sslmode=" + c.SSLMode
}
