// Package env defines the environment variables of the NexusBot binary
package env

const (
	// Prefix is the prefix of all NexusBot environment variables
	Prefix = "NEXUSBOT"

	DBURLSuffix    = "_DB_URL"
	RedisURLSuffix = "_REDIS_URL"
	BotTokenSuffix = "_BOT_TOKEN"
)
