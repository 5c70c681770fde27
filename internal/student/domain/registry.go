package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
)

const StudentAggregate = "student"

const (
	StudentCreated = "student.created"
	StudentUpdated = "student.updated"
	StudentDeleted = "student.deleted"
)

const StudentTopic = "student"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	changed := reflect.TypeOf(sharedEvents.RecordChanged{})
	return map[string]sharedEvents.EventMetadata{
		StudentCreated: {Type: changed, Topic: StudentTopic},
		StudentUpdated: {Type: changed, Topic: StudentTopic},
		StudentDeleted: {Type: reflect.TypeOf(sharedEvents.RecordRemoved{}), Topic: StudentTopic},
	}
}
