package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
)

const ConsumerAggregate = "consumer"

const (
	ConsumerCreated = "consumer.created"
	ConsumerUpdated = "consumer.updated"
	ConsumerDeleted = "consumer.deleted"
)

const ConsumerTopic = "consumer"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	changed := reflect.TypeOf(sharedEvents.RecordChanged{})
	return map[string]sharedEvents.EventMetadata{
		ConsumerCreated: {Type: changed, Topic: ConsumerTopic},
		ConsumerUpdated: {Type: changed, Topic: ConsumerTopic},
		ConsumerDeleted: {Type: reflect.TypeOf(sharedEvents.RecordRemoved{}), Topic: ConsumerTopic},
	}
}
