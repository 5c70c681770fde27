package domain

import (
	"time"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
)

// Consumer es la ficha de un cliente. Se enlaza con la cuenta por Email.
type Consumer struct {
	ConsumerID       string    `json:"consumer_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	RegistrationDate time.Time `json:"registration_date"`
	Photo            string    `json:"photo"`
}

// ConsumerInput son los campos que el usuario puede escribir.
type ConsumerInput struct {
	ConsumerID string `json:"consumer_id" form:"consumer_id" validate:"required,min=3,max=10"`
	Name       string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Address    string `json:"address" form:"address" validate:"required,max=200"`
	Phone      string `json:"phone" form:"phone" validate:"required,phone"`
}

func (c *Consumer) RecordID() string { return c.ConsumerID }

func (c *Consumer) RecordName() string { return c.Name }

func (c *Consumer) RecordEmail() string { return c.Email }

func (c *Consumer) RecordDate() time.Time { return c.RegistrationDate }

// Apply copia los campos editables.
func (c *Consumer) Apply(in ConsumerInput) {
	c.Name = in.Name
	c.Address = in.Address
	c.Phone = in.Phone
}

// Changed es el payload de integración de created/updated.
func (c *Consumer) Changed(at time.Time) *sharedEvents.RecordChanged {
	return &sharedEvents.RecordChanged{
		Kind:       ConsumerAggregate,
		ID:         c.ConsumerID,
		Name:       c.Name,
		Email:      c.Email,
		OccurredOn: at,
	}
}

var _ listing.Record = (*Consumer)(nil)
