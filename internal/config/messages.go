package config

import "fmt"

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
	errRequiredWhenSetFmt   = "%s must be set when %s is set"
)

type messageBuilders struct {
	requiredEnvNotSet func(string) string
	requiredWhenSet   func(string, string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		requiredWhenSet: func(key, trigger string) string {
			return fmt.Sprintf(errRequiredWhenSetFmt, key, trigger)
		},
	}
}

var messages = newMessageBuilders()
