package config

const EnvPrefix = "DISPATCH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISPATCH_DB_DSN"
	EnvDBHost = "DISPATCH_DB_HOST"
	EnvDBUser = "DISPATCH_DB_USER"
	EnvDBName = "DISPATCH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
