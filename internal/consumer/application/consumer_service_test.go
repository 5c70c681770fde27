package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/storage"
	"github.com/davicafu/rosterlab/tests/mocks"
)

var fixedNow = time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*ConsumerService, *mocks.InMemoryConsumerRepo, *mocks.DummyCache, *mocks.RoleAssignerStub, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	photos, err := storage.NewPhotoStore(fs, "/uploads", zap.NewNop())
	require.NoError(t, err)

	repo := mocks.NewInMemoryConsumerRepo()
	cache := mocks.NewDummyCache()
	roles := &mocks.RoleAssignerStub{}
	svc := NewConsumerService(repo, cache, photos, roles, listing.NewEngine[*consumerDomain.Consumer](3), zap.NewNop()).WithCacheTTL(60)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, cache, roles, fs
}

var owner = access.Principal{UserID: "u7", Email: "Jane@Shop.com", Roles: []access.Role{access.RoleUser}}

func janeInput() consumerDomain.ConsumerInput {
	return consumerDomain.ConsumerInput{ConsumerID: "C001", Name: "Jane Doe", Address: "1 Long St, Cape Town", Phone: "+27 79 554 7786"}
}

func TestConsumerService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, roles, fs := setup(t)

	res := svc.Create(ctx, owner, janeInput(), &sharedDomain.Upload{Filename: "jane.jpeg", Content: bytes.NewBufferString("jpeg")})
	require.True(t, res.IsOK(), "%+v", res)

	c := res.Value.Consumer
	assert.Equal(t, "jane@shop.com", c.Email)
	assert.Equal(t, fixedNow, c.RegistrationDate)
	assert.Equal(t, "+27 79 554 7786", c.Phone)
	ok, _ := afero.Exists(fs, "/uploads/"+c.Photo)
	assert.True(t, ok)

	assert.Equal(t, "token-Consumer", res.Value.Token)
	require.Len(t, roles.Calls, 1)
	assert.Equal(t, access.RoleConsumer, roles.Calls[0].Role)
	assert.Equal(t, []string{consumerDomain.ConsumerCreated}, repo.Events())

	assert.True(t, cache.Has(consumerDomain.ConsumerCacheKeyByID("C001")))
}

func TestConsumerService_GetThenDeleteLeavesNoStaleEntry(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, _ := setup(t)
	repo.Consumers["90909"] = &consumerDomain.Consumer{ConsumerID: "90909", Name: "Misper", Email: "misper@x.com"}
	key := consumerDomain.ConsumerCacheKeyByID("90909")

	require.True(t, svc.Get(ctx, "90909").IsOK())
	require.True(t, cache.Has(key))
	require.True(t, svc.Delete(ctx, "90909").IsOK())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cache.Has(key))
	assert.Equal(t, outcome.KindNotFound, svc.Get(ctx, "90909").Kind)
}

func TestConsumerService_CreateRejections(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := setup(t)
	repo.Consumers["C001"] = &consumerDomain.Consumer{ConsumerID: "C001", Name: "Taken", Email: "someone@else.com"}
	repo.Consumers["C002"] = &consumerDomain.Consumer{ConsumerID: "C002", Name: "Jane", Email: "JANE@shop.com"}

	bad := janeInput()
	bad.Phone = "call me"

	tests := []struct {
		name   string
		caller access.Principal
		in     consumerDomain.ConsumerInput
		photo  *sharedDomain.Upload
		field  string
	}{
		{"bad phone", owner, bad, nil, "phone"},
		{"owner already registered", owner, janeInput(), nil, "email"},
		{"id taken", access.Principal{Email: "new@shop.com"}, janeInput(), nil, "consumer_id"},
		{"bad photo", access.Principal{Email: "new@shop.com"}, consumerDomain.ConsumerInput{ConsumerID: "C003", Name: "Neo", Address: "x", Phone: "0795547786"},
			&sharedDomain.Upload{Filename: "neo.bmp", Content: bytes.NewBufferString("b")}, "photo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := svc.Create(ctx, tc.caller, tc.in, tc.photo)
			assert.Equal(t, outcome.KindValidationFailed, res.Kind)
			assert.Contains(t, res.Fields, tc.field)
		})
	}
	assert.Len(t, repo.Consumers, 2)
	assert.Empty(t, repo.Outbox)
}

func TestConsumerService_CreateDiscardsPhotoOnStorageError(t *testing.T) {
	svc, repo, _, roles, fs := setup(t)
	// Sólo falla la escritura; las comprobaciones previas pasan.
	svc.repo = &failOnCreate{InMemoryConsumerRepo: repo}

	res := svc.Create(context.Background(), owner, janeInput(), &sharedDomain.Upload{Filename: "x.png", Content: bytes.NewBufferString("x")})
	assert.Equal(t, outcome.KindStorageError, res.Kind)

	files, _ := afero.ReadDir(fs, "/uploads")
	assert.Empty(t, files)
	assert.Empty(t, roles.Calls)
}

type failOnCreate struct {
	*mocks.InMemoryConsumerRepo
}

func (f *failOnCreate) Create(context.Context, *consumerDomain.Consumer, sharedDomain.OutboxEvent) error {
	return errors.New("connection reset")
}

func TestConsumerService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, fs := setup(t)
	require.True(t, svc.Create(ctx, owner, janeInput(), nil).IsOK())

	in := consumerDomain.ConsumerInput{Name: "Jane Smith", Address: "2 Short St", Phone: "(021) 555-0101"}
	res := svc.Update(ctx, "C001", in, &sharedDomain.Upload{Filename: "new.png", Content: bytes.NewBufferString("n")})
	require.True(t, res.IsOK(), "%+v", res)
	assert.Equal(t, "Jane Smith", res.Value.Name)
	assert.Equal(t, "2 Short St", repo.Consumers["C001"].Address)
	assert.Equal(t, "jane@shop.com", repo.Consumers["C001"].Email)
	photo := res.Value.Photo

	del := svc.Delete(ctx, "C001")
	require.True(t, del.IsOK())
	assert.Equal(t, "Jane Smith", del.Value.Name)
	ok, _ := afero.Exists(fs, "/uploads/"+photo)
	assert.False(t, ok)
	assert.False(t, cache.Has(consumerDomain.ConsumerCacheKeyByID("C001")))
	assert.Equal(t, []string{consumerDomain.ConsumerCreated, consumerDomain.ConsumerUpdated, consumerDomain.ConsumerDeleted}, repo.Events())

	assert.Equal(t, outcome.KindNotFound, svc.Update(ctx, "C001", in, nil).Kind)
	assert.Equal(t, outcome.KindNotFound, svc.Delete(ctx, "C001").Kind)
}

func TestConsumerService_DraftAndLookup(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := setup(t)

	draft := svc.Draft(ctx, owner.Email)
	require.True(t, draft.IsOK())
	assert.Equal(t, fixedNow, draft.Value.Consumer.RegistrationDate)
	assert.Equal(t, outcome.KindNotFound, svc.GetByEmail(ctx, owner.Email).Kind)

	repo.Consumers["C010"] = &consumerDomain.Consumer{ConsumerID: "C010", Name: "Jane", Email: "jane@shop.com"}

	draft = svc.Draft(ctx, "JANE@SHOP.COM")
	require.True(t, draft.IsOK())
	assert.Equal(t, "C010", draft.Value.ExistingID)

	got := svc.GetByEmail(ctx, owner.Email)
	require.True(t, got.IsOK())
	assert.Equal(t, "C010", got.Value.ConsumerID)
}

func TestConsumerService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := setup(t)
	for i, name := range []string{"Zoe", "Adam", "Mia", "Ben"} {
		id := string(rune('A'+i)) + "01"
		repo.Consumers[id] = &consumerDomain.Consumer{ConsumerID: id, Name: name, RegistrationDate: fixedNow.AddDate(0, 0, i)}
	}

	res := svc.List(ctx, listing.Request{Page: 2})
	require.True(t, res.IsOK())
	assert.Equal(t, 4, res.Value.TotalCount)
	assert.Equal(t, 2, res.Value.TotalPages)
	require.Len(t, res.Value.Items, 1)
	assert.Equal(t, "Zoe", res.Value.Items[0].Name)

	res = svc.List(ctx, listing.Request{Sort: listing.SortByNameDesc})
	require.True(t, res.IsOK())
	assert.Equal(t, "Zoe", res.Value.Items[0].Name)
	assert.True(t, res.Value.HasNext)
}
