package config

type SessionConfig interface {
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Sessions struct {
	Store         string `yaml:"session_store" env:"SESSION_STORE" env-default:"memory"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

var _ SessionConfig = Sessions{}

func (s Sessions) GetSessionStore() string {
	if s.Store == "" {
		return SessionStoreMemory
	}
	return s.Store
}

func (s Sessions) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Sessions) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Sessions) GetRedisDB() int {
	return s.RedisDB
}
