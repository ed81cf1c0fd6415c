package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "SPICEPALACE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SPICEPALACE_DB_DSN"
	EnvDBHost = "SPICEPALACE_DB_HOST"
	EnvDBUser = "SPICEPALACE_DB_USER"
	EnvDBName = "SPICEPALACE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
