package configs

type Config struct {
	GrpcAddr   string
	HttpAddr   string
	DebugAddr  string
	Datastore  string
	Redis      RedisConfig
	Cassandra  CassandraConfig
	SQLite     SQLiteConfig
	PolicyFile string
	LogLevel   string
	LogFormat  string
}

type RedisConfig struct {
	Address  string
	Database int
	Password string
	Prefix   string
}

type CassandraConfig struct {
	Hosts    string
	Keyspace string
}

type SQLiteConfig struct {
	DSN string
}
