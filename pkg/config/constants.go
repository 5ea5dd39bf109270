package config

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "printforge"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PRINTFORGE_DB_DSN"
	EnvDBHost = "PRINTFORGE_DB_HOST"
	EnvDBUser = "PRINTFORGE_DB_USER"
	EnvDBName = "PRINTFORGE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
