package config

import "github.com/spf13/viper"

const (
	databaseURLKey   = "database_url"
	redisAddrKey     = "redis_addr"
	redisPasswordKey = "redis_password"
	redisDBKey       = "redis_db"
)

// StoreConfig describes the backing stores. An empty DatabaseURL runs the
// parents repo in memory; an empty RedisAddr keeps attempt counters in process.
type StoreConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Store struct {
	v *viper.Viper
}

var _ StoreConfig = Store{}

func (s Store) GetDatabaseURL() string {
	return s.v.GetString(databaseURLKey)
}

func (s Store) GetRedisAddr() string {
	return s.v.GetString(redisAddrKey)
}

func (s Store) GetRedisPassword() string {
	return s.v.GetString(redisPasswordKey)
}

func (s Store) GetRedisDB() int {
	return s.v.GetInt(redisDBKey)
}
