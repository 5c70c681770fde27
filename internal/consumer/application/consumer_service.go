package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	"github.com/davicafu/rosterlab/internal/shared/domain/validation"
	sharedCache "github.com/davicafu/rosterlab/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/rosterlab/internal/shared/infra/utils"
)

const defaultCacheTTL = 120

// errPhotoRejected marca una subida con extensión no admitida.
var errPhotoRejected = errors.New("photo rejected")

type Registration struct {
	Consumer *consumerDomain.Consumer `json:"consumer"`
	Token    string                   `json:"token,omitempty"`
}

type Draft struct {
	Consumer   *consumerDomain.Consumer `json:"consumer,omitempty"`
	ExistingID string                   `json:"existing_id,omitempty"`
}

// ConsumerService define los casos de uso de las fichas de cliente.
type ConsumerService struct {
	repo      consumerDomain.ConsumerRepository
	cache     sharedCache.Cache
	photos    sharedDomain.PhotoStorage
	roles     consumerDomain.RoleAssigner
	engine    listing.Engine[*consumerDomain.Consumer]
	validator *validation.Validator
	cacheTTL  int
	now       func() time.Time
	log       *zap.Logger
}

func NewConsumerService(
	repo consumerDomain.ConsumerRepository,
	cache sharedCache.Cache,
	photos sharedDomain.PhotoStorage,
	roles consumerDomain.RoleAssigner,
	engine listing.Engine[*consumerDomain.Consumer],
	log *zap.Logger,
) *ConsumerService {
	return &ConsumerService{
		repo:      repo,
		cache:     cache,
		photos:    photos,
		roles:     roles,
		engine:    engine,
		validator: validation.New(),
		cacheTTL:  defaultCacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

func (s *ConsumerService) WithCacheTTL(secs int) *ConsumerService {
	s.cacheTTL = sharedUtils.Ternary(secs > 0, secs, defaultCacheTTL)
	return s
}

// Draft prepara el alta para la cuenta email.
func (s *ConsumerService) Draft(ctx context.Context, email string) outcome.Outcome[Draft] {
	existing, err := s.findByOwner(ctx, email)
	if err != nil {
		return outcome.Failed[Draft](err)
	}
	if existing != nil {
		return outcome.OK(Draft{ExistingID: existing.ConsumerID})
	}
	return outcome.OK(Draft{Consumer: &consumerDomain.Consumer{
		Email:            strings.ToLower(strings.TrimSpace(email)),
		RegistrationDate: s.now(),
		Photo:            sharedDomain.DefaultPhoto,
	}})
}

// Create da de alta la ficha de owner y le cambia el rol a Consumer.
func (s *ConsumerService) Create(ctx context.Context, owner access.Principal, in consumerDomain.ConsumerInput, photo *sharedDomain.Upload) outcome.Outcome[Registration] {
	in.ConsumerID = strings.TrimSpace(in.ConsumerID)
	if fields := s.validator.Struct(in); fields != nil {
		return outcome.Invalid[Registration](fields)
	}

	existing, err := s.findByOwner(ctx, owner.Email)
	if err != nil {
		return outcome.Failed[Registration](err)
	}
	if existing != nil {
		return outcome.Invalid[Registration](outcome.FieldErrors{"email": "already has a consumer record"})
	}

	taken, err := s.repo.Exists(ctx, in.ConsumerID)
	if err != nil {
		return outcome.Failed[Registration](err)
	}
	if taken {
		return outcome.Invalid[Registration](outcome.FieldErrors{"consumer_id": "is already taken"})
	}

	photoName, err := s.storePhoto(ctx, photo)
	if err != nil {
		return photoFailure[Registration](err)
	}

	now := s.now()
	consumer := &consumerDomain.Consumer{
		ConsumerID:       in.ConsumerID,
		Email:            strings.ToLower(strings.TrimSpace(owner.Email)),
		RegistrationDate: now,
		Photo:            sharedUtils.Ternary(photoName != "", photoName, sharedDomain.DefaultPhoto),
	}
	consumer.Apply(in)

	evt := sharedDomain.NewOutboxEvent(consumerDomain.ConsumerAggregate, consumer.ConsumerID, consumerDomain.ConsumerCreated, consumer.Changed(now))
	if err := s.repo.Create(ctx, consumer, evt); err != nil {
		s.removePhoto(ctx, photoName)
		if errors.Is(err, consumerDomain.ErrConsumerAlreadyExists) {
			return outcome.Invalid[Registration](outcome.FieldErrors{"consumer_id": "is already taken"})
		}
		s.log.Error("Failed to create consumer", zap.String("consumer_id", consumer.ConsumerID), zap.Error(err))
		return outcome.Failed[Registration](err)
	}

	sharedCache.SetNow(ctx, s.cache, consumerDomain.ConsumerCacheKeyByID(consumer.ConsumerID), consumer, s.cacheTTL, s.log)

	token, err := s.roles.Promote(ctx, consumer.Email, access.KindConsumer.RoleFor())
	if err != nil {
		s.log.Warn("Role promotion failed", zap.String("email", consumer.Email), zap.Error(err))
	}
	return outcome.OK(Registration{Consumer: consumer, Token: token})
}

// Get obtiene una ficha usando cache-aside con reintentos.
func (s *ConsumerService) Get(ctx context.Context, id string) outcome.Outcome[*consumerDomain.Consumer] {
	key := consumerDomain.ConsumerCacheKeyByID(id)
	if s.cache != nil {
		var cached consumerDomain.Consumer
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return outcome.OK(&cached)
		}
	}

	consumer, err := s.fetch(ctx, id)
	if err != nil {
		return notFoundOr[*consumerDomain.Consumer](err)
	}

	sharedCache.SetNow(ctx, s.cache, key, consumer, s.cacheTTL, s.log)
	return outcome.OK(consumer)
}

// GetByEmail devuelve la ficha de una cuenta.
func (s *ConsumerService) GetByEmail(ctx context.Context, email string) outcome.Outcome[*consumerDomain.Consumer] {
	consumer, err := s.findByOwner(ctx, email)
	switch {
	case err != nil:
		return outcome.Failed[*consumerDomain.Consumer](err)
	case consumer == nil:
		return outcome.Missing[*consumerDomain.Consumer]()
	}
	return outcome.OK(consumer)
}

// Update cambia nombre, dirección y teléfono y, si llega, la foto.
func (s *ConsumerService) Update(ctx context.Context, id string, in consumerDomain.ConsumerInput, photo *sharedDomain.Upload) outcome.Outcome[*consumerDomain.Consumer] {
	in.ConsumerID = id
	if fields := s.validator.Struct(in); fields != nil {
		return outcome.Invalid[*consumerDomain.Consumer](fields)
	}

	consumer, err := s.fetch(ctx, id)
	if err != nil {
		return notFoundOr[*consumerDomain.Consumer](err)
	}

	newPhoto, err := s.storePhoto(ctx, photo)
	if err != nil {
		return photoFailure[*consumerDomain.Consumer](err)
	}

	oldPhoto := consumer.Photo
	consumer.Apply(in)
	if newPhoto != "" {
		consumer.Photo = newPhoto
	}

	evt := sharedDomain.NewOutboxEvent(consumerDomain.ConsumerAggregate, id, consumerDomain.ConsumerUpdated, consumer.Changed(s.now()))
	if err := s.repo.Update(ctx, consumer, evt); err != nil {
		s.removePhoto(ctx, newPhoto)
		s.log.Error("Failed to update consumer", zap.String("consumer_id", id), zap.Error(err))
		return notFoundOr[*consumerDomain.Consumer](err)
	}

	if newPhoto != "" {
		s.removePhoto(ctx, oldPhoto)
	}

	key := consumerDomain.ConsumerCacheKeyByID(id)
	sharedCache.SetNow(ctx, s.cache, key, consumer, s.cacheTTL, s.log)
	return outcome.OK(consumer)
}

// Delete borra la ficha y después su foto.
func (s *ConsumerService) Delete(ctx context.Context, id string) outcome.Outcome[*consumerDomain.Consumer] {
	consumer, err := s.fetch(ctx, id)
	if err != nil {
		return notFoundOr[*consumerDomain.Consumer](err)
	}

	payload := &sharedEvents.RecordRemoved{Kind: consumerDomain.ConsumerAggregate, ID: id}
	evt := sharedDomain.NewOutboxEvent(consumerDomain.ConsumerAggregate, id, consumerDomain.ConsumerDeleted, payload)
	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		s.log.Error("Failed to delete consumer", zap.String("consumer_id", id), zap.Error(err))
		return notFoundOr[*consumerDomain.Consumer](err)
	}

	sharedCache.InvalidateNow(ctx, s.cache, consumerDomain.ConsumerCacheKeyByID(id), s.log)
	s.removePhoto(ctx, consumer.Photo)
	return outcome.OK(consumer)
}

// List carga todas las fichas y aplica búsqueda, orden y paginación.
func (s *ConsumerService) List(ctx context.Context, req listing.Request) outcome.Outcome[listing.Page[*consumerDomain.Consumer]] {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to list consumers", zap.Error(err))
		return outcome.Failed[listing.Page[*consumerDomain.Consumer]](err)
	}
	return outcome.OK(s.engine.Query(all, req))
}

func (s *ConsumerService) fetch(ctx context.Context, id string) (*consumerDomain.Consumer, error) {
	var consumer *consumerDomain.Consumer
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		consumer, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, consumerDomain.ErrConsumerNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err != nil && !errors.Is(err, consumerDomain.ErrConsumerNotFound) {
		s.log.Error("Failed to fetch consumer", zap.String("consumer_id", id), zap.Error(err))
	}
	return consumer, err
}

func (s *ConsumerService) findByOwner(ctx context.Context, email string) (*consumerDomain.Consumer, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	found, err := s.repo.ListByCriteria(ctx, consumerDomain.OwnerCriteria{Email: email})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (s *ConsumerService) storePhoto(ctx context.Context, photo *sharedDomain.Upload) (string, error) {
	if photo == nil || photo.Content == nil {
		return "", nil
	}
	name, err := s.photos.Save(ctx, photo.Filename, photo.Content)
	if errors.Is(err, sharedDomain.ErrInvalidPhoto) {
		return "", errPhotoRejected
	}
	if err != nil {
		s.log.Error("Failed to store photo", zap.Error(err))
	}
	return name, err
}

func (s *ConsumerService) removePhoto(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.photos.Delete(ctx, name); err != nil {
		s.log.Warn("Failed to delete photo", zap.String("photo", name), zap.Error(err))
	}
}

func notFoundOr[T any](err error) outcome.Outcome[T] {
	if errors.Is(err, consumerDomain.ErrConsumerNotFound) {
		return outcome.Missing[T]()
	}
	return outcome.Failed[T](err)
}

func photoFailure[T any](err error) outcome.Outcome[T] {
	if errors.Is(err, errPhotoRejected) {
		return outcome.Invalid[T](outcome.FieldErrors{"photo": "must be a png, jpg, gif or webp image"})
	}
	return outcome.Failed[T](err)
}
