package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// NEEDLINK_ tags so the prefix never doubles up.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "NEEDLINK_DB_DSN"
	EnvDBHost = "NEEDLINK_DB_HOST"
	EnvDBUser = "NEEDLINK_DB_USER"
	EnvDBName = "NEEDLINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
