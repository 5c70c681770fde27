package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
)

// consumerFields mapea los campos del dominio a las claves del documento.
var consumerFields = map[string]string{
	"consumer_id":       "_id",
	"name":              "name",
	"email":             "email",
	"phone":             "phone",
	"registration_date": "registrationDate",
}

// ConsumerRepoMongoDB implementa ConsumerRepository y la outbox de su colección.
type ConsumerRepoMongoDB struct {
	client     *mongo.Client
	consumers  *mongo.Collection
	outboxColl *mongo.Collection
}

var (
	_ consumerDomain.ConsumerRepository = (*ConsumerRepoMongoDB)(nil)
	_ sharedDomain.OutboxRepository     = (*ConsumerRepoMongoDB)(nil)
)

func NewConsumerRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*ConsumerRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	repo := &ConsumerRepoMongoDB{
		client:     client,
		consumers:  db.Collection("consumers"),
		outboxColl: db.Collection("outbox"),
	}

	_, err := repo.outboxColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "processed", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create outbox index: %w", err)
	}
	return repo, nil
}

// --- Structs de BSON ---

type mongoConsumer struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Email            string    `bson:"email"`
	Address          string    `bson:"address"`
	Phone            string    `bson:"phone"`
	RegistrationDate time.Time `bson:"registrationDate"`
	Photo            string    `bson:"photo"`
}

// El payload se guarda como JSON para que el relayer lo lea igual que desde SQL.
type mongoOutboxEvent struct {
	ID            string    `bson:"_id"`
	AggregateType string    `bson:"aggregateType"`
	AggregateID   string    `bson:"aggregateId"`
	EventType     string    `bson:"eventType"`
	Payload       string    `bson:"payload"`
	CreatedAt     time.Time `bson:"createdAt"`
	Processed     bool      `bson:"processed"`
}

// --- CRUD Transaccional ---

// inTx ejecuta fn y la inserción de evt en la misma transacción.
func (r *ConsumerRepoMongoDB) inTx(ctx context.Context, evt sharedDomain.OutboxEvent, fn func(sessCtx mongo.SessionContext) error) error {
	mo, err := toMongoOutboxEvent(evt)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := fn(sessCtx); err != nil {
			return nil, err
		}
		_, err := r.outboxColl.InsertOne(sessCtx, mo)
		return nil, err
	})
	return err
}

func (r *ConsumerRepoMongoDB) Create(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	return r.inTx(ctx, evt, func(sessCtx mongo.SessionContext) error {
		_, err := r.consumers.InsertOne(sessCtx, toMongoConsumer(c))
		if mongo.IsDuplicateKeyError(err) {
			return consumerDomain.ErrConsumerAlreadyExists
		}
		return err
	})
}

func (r *ConsumerRepoMongoDB) Update(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	return r.inTx(ctx, evt, func(sessCtx mongo.SessionContext) error {
		mc := toMongoConsumer(c)
		res, err := r.consumers.ReplaceOne(sessCtx, bson.M{"_id": mc.ID}, mc)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return consumerDomain.ErrConsumerNotFound
		}
		return nil
	})
}

func (r *ConsumerRepoMongoDB) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	return r.inTx(ctx, evt, func(sessCtx mongo.SessionContext) error {
		res, err := r.consumers.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return consumerDomain.ErrConsumerNotFound
		}
		return nil
	})
}

// --- Lectura ---

func (r *ConsumerRepoMongoDB) GetByID(ctx context.Context, id string) (*consumerDomain.Consumer, error) {
	var mc mongoConsumer
	err := r.consumers.FindOne(ctx, bson.M{"_id": id}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consumerDomain.ErrConsumerNotFound
		}
		return nil, err
	}
	return fromMongoConsumer(&mc), nil
}

func (r *ConsumerRepoMongoDB) ListAll(ctx context.Context) ([]*consumerDomain.Consumer, error) {
	return r.ListByCriteria(ctx, nil)
}

func (r *ConsumerRepoMongoDB) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*consumerDomain.Consumer, error) {
	filter, err := criteriaToMongoFilter(criteria)
	if err != nil {
		return nil, err
	}

	cursor, err := r.consumers.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var consumers []*consumerDomain.Consumer
	for cursor.Next(ctx) {
		var mc mongoConsumer
		if err := cursor.Decode(&mc); err != nil {
			return nil, err
		}
		consumers = append(consumers, fromMongoConsumer(&mc))
	}
	return consumers, cursor.Err()
}

func (r *ConsumerRepoMongoDB) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.consumers.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Outbox ---

func (r *ConsumerRepoMongoDB) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.outboxColl.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []sharedDomain.OutboxEvent
	for cursor.Next(ctx) {
		var mo mongoOutboxEvent
		if err := cursor.Decode(&mo); err != nil {
			return nil, err
		}
		evt, err := fromMongoOutboxEvent(&mo)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, cursor.Err()
}

func (r *ConsumerRepoMongoDB) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.outboxColl.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{"processed": true}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}

// --- Helpers de Mapeo y Conversión ---

func toMongoConsumer(c *consumerDomain.Consumer) *mongoConsumer {
	return &mongoConsumer{
		ID: c.ConsumerID, Name: c.Name, Email: c.Email, Address: c.Address,
		Phone: c.Phone, RegistrationDate: c.RegistrationDate.UTC(), Photo: c.Photo,
	}
}

func fromMongoConsumer(mc *mongoConsumer) *consumerDomain.Consumer {
	return &consumerDomain.Consumer{
		ConsumerID: mc.ID, Name: mc.Name, Email: mc.Email, Address: mc.Address,
		Phone: mc.Phone, RegistrationDate: mc.RegistrationDate.UTC(), Photo: mc.Photo,
	}
}

func toMongoOutboxEvent(evt sharedDomain.OutboxEvent) (*mongoOutboxEvent, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	return &mongoOutboxEvent{
		ID: evt.ID.String(), AggregateType: evt.AggregateType, AggregateID: evt.AggregateID,
		EventType: evt.EventType, Payload: string(payload), CreatedAt: evt.CreatedAt,
	}, nil
}

func fromMongoOutboxEvent(mo *mongoOutboxEvent) (sharedDomain.OutboxEvent, error) {
	id, err := uuid.Parse(mo.ID)
	if err != nil {
		return sharedDomain.OutboxEvent{}, fmt.Errorf("invalid UUID in outbox document: %w", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(mo.Payload), &payload); err != nil {
		return sharedDomain.OutboxEvent{}, fmt.Errorf("invalid JSON payload in outbox document %s: %w", id, err)
	}
	return sharedDomain.OutboxEvent{
		ID: id, AggregateType: mo.AggregateType, AggregateID: mo.AggregateID,
		EventType: mo.EventType, Payload: payload, CreatedAt: mo.CreatedAt,
	}, nil
}

var mongoOps = map[sharedDomain.Operator]string{
	sharedDomain.OpEq:  "$eq",
	sharedDomain.OpGt:  "$gt",
	sharedDomain.OpGte: "$gte",
	sharedDomain.OpLt:  "$lt",
	sharedDomain.OpLte: "$lte",
}

// criteriaToMongoFilter traduce criterios neutrales a un filtro BSON.
// Los compuestos OR se traducen a $or. El email se compara sin mayúsculas.
func criteriaToMongoFilter(criteria sharedDomain.Criteria) (bson.D, error) {
	if criteria == nil {
		return bson.D{}, nil
	}

	if comp, ok := criteria.(sharedDomain.CompositeCriteria); ok {
		var children bson.A
		for _, child := range comp.Criterias {
			f, err := criteriaToMongoFilter(child)
			if err != nil {
				return nil, err
			}
			if len(f) > 0 {
				children = append(children, f)
			}
		}
		switch {
		case len(children) == 0:
			return bson.D{}, nil
		case comp.Operator == sharedDomain.OpOr:
			return bson.D{{Key: "$or", Value: children}}, nil
		default:
			return bson.D{{Key: "$and", Value: children}}, nil
		}
	}

	filter := bson.D{}
	for _, c := range criteria.ToConditions() {
		key, ok := consumerFields[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}

		switch {
		case c.Op == sharedDomain.OpLike || c.Op == sharedDomain.OpILike:
			pattern := regexp.QuoteMeta(strings.Trim(fmt.Sprint(c.Value), "%"))
			value := bson.M{"$regex": pattern}
			if c.Op == sharedDomain.OpILike {
				value["$options"] = "i"
			}
			filter = append(filter, bson.E{Key: key, Value: value})
		case c.Field == "email" && c.Op == sharedDomain.OpEq:
			pattern := "^" + regexp.QuoteMeta(fmt.Sprint(c.Value)) + "$"
			filter = append(filter, bson.E{Key: key, Value: bson.M{"$regex": pattern, "$options": "i"}})
		default:
			op, ok := mongoOps[c.Op]
			if !ok {
				op = "$eq"
			}
			filter = append(filter, bson.E{Key: key, Value: bson.M{op: c.Value}})
		}
	}
	return filter, nil
}
