package models

// DBType names the database engine a site is created on
type DBType string

const (
	// MariaDB is the default backend
	MariaDB DBType = "mariadb"
	// Postgres is selected when a postgres root password is supplied
	Postgres DBType = "postgres"
)

// BootstrapConfig holds everything needed to create one site.
// It is built once at startup and never mutated afterwards.
type BootstrapConfig struct {
	SiteName string
	// Root credentials handed to the installer
	RootUsername string
	RootPassword string
	// PostgresRootPassword is empty unless the postgres backend is selected
	PostgresRootPassword string
	AdminPassword        string
	DBType               DBType
	DBHost               string
	DBPort               int
	Force                bool
	InstallApps          []string
}

// SiteConfig is the part of a generated site_config.json we read back
type SiteConfig struct {
	DBName     string `json:"db_name"`
	DBPassword string `json:"db_password"`
}
