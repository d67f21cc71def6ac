package amqp

import "time"

const (
	DefaultPort           = 5672
	DefaultVHost          = "/"
	DefaultUser           = "guest"
	DefaultLocale         = "en_US"
	DefaultConsumerPrefix = "relay"

	// exchange name of the broker's default direct exchange
	defaultExchange = ""

	cancelWait = 2 * time.Second
)
