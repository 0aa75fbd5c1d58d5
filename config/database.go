package config

// DBConfig is the Postgres connection read from DB_* variables.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"membergate"`
	Password string `env:"PASSWORD" envDefault:"membergate"`
	Name     string `env:"NAME"     envDefault:"membergate"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`

	// RunMigrationsOnStart applies embedded migrations before serving.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig is read from REDIS_* variables. Redis holds login sessions and
// the beta-mode override. UseSentinel takes precedence over UseCluster; with
// neither set URI is a host:port or redis:// URL.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`

	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"`

	UseCluster   bool     `env:"USE_CLUSTER"   envDefault:"false"`
	ClusterNodes []string `env:"CLUSTER_NODES"`
}
