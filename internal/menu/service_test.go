package menu_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-resto/internal/menu"
)

type fakeStore struct {
	categories []menu.Category
	items      map[uuid.UUID]menu.Item

	listItemsCalls int
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]menu.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]menu.Item, error) {
	f.listItemsCalls++
	var out []menu.Item
	for _, it := range f.items {
		if categoryID != nil && it.CategoryID != *categoryID {
			continue
		}
		if availableOnly && !it.Available {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeStore) GetItem(ctx context.Context, id uuid.UUID) (menu.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return menu.Item{}, pgx.ErrNoRows
	}
	return it, nil
}

func (f *fakeStore) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]menu.Item, error) {
	out := map[uuid.UUID]menu.Item{}
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (f *fakeStore) CreateItem(ctx context.Context, in menu.ItemInput) (menu.Item, error) {
	it := menu.Item{
		ID:         uuid.New(),
		Name:       in.Name,
		BasePrice:  in.BasePrice,
		CategoryID: in.CategoryID,
		Available:  true,
	}
	if in.Available != nil {
		it.Available = *in.Available
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, id uuid.UUID, in menu.ItemInput) (menu.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return menu.Item{}, pgx.ErrNoRows
	}
	it.Name = in.Name
	it.BasePrice = in.BasePrice
	it.CategoryID = in.CategoryID
	if in.Available != nil {
		it.Available = *in.Available
	}
	f.items[id] = it
	return it, nil
}

func (f *fakeStore) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (menu.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return menu.Item{}, pgx.ErrNoRows
	}
	it.Available = available
	f.items[id] = it
	return it, nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, name string, sortOrder int32) (menu.Category, error) {
	c := menu.Category{ID: uuid.New(), Name: name, SortOrder: sortOrder}
	f.categories = append(f.categories, c)
	return c, nil
}

func newTestService(t *testing.T) (*menu.Service, *fakeStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &fakeStore{items: map[uuid.UUID]menu.Item{}}
	return &menu.Service{Store: store, Cache: menu.NewCache(client, time.Minute)}, store
}

func TestListItemsCachesAvailableListing(t *testing.T) {
	svc, store := newTestService(t)
	cat := uuid.New()
	id := uuid.New()
	store.items[id] = menu.Item{ID: id, Name: "Garlic Bread", BasePrice: 699, CategoryID: cat, Available: true}

	first, err := svc.ListItems(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.ListItems(context.Background(), nil, true)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, store.listItemsCalls, "second listing should be served from cache")
}

func TestWritesInvalidateItemCache(t *testing.T) {
	svc, store := newTestService(t)
	cat := uuid.New()

	_, err := svc.ListItems(context.Background(), nil, true)
	require.NoError(t, err)

	created, err := svc.CreateItem(context.Background(), menu.ItemInput{
		Name:       "Bruschetta",
		BasePrice:  999,
		CategoryID: cat,
	})
	require.NoError(t, err)

	rows, err := svc.ListItems(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, created.ID, rows[0].ID)
	require.Equal(t, 2, store.listItemsCalls)
}

func TestSnapshotRequiresAllIDs(t *testing.T) {
	svc, store := newTestService(t)
	cat := uuid.New()
	id := uuid.New()
	store.items[id] = menu.Item{ID: id, Name: "Coca-Cola", BasePrice: 349, CategoryID: cat, Available: true}

	snap, err := svc.Snapshot(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Equal(t, int64(349), snap[id].BasePrice)
	require.Equal(t, cat, snap[id].CategoryID)

	_, err = svc.Snapshot(context.Background(), []uuid.UUID{id, uuid.New()})
	require.Error(t, err)
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateItem(context.Background(), menu.ItemInput{Name: "", BasePrice: 100, CategoryID: uuid.New()})
	require.Error(t, err)

	_, err = svc.CreateItem(context.Background(), menu.ItemInput{Name: "Fries", BasePrice: 0, CategoryID: uuid.New()})
	require.Error(t, err)

	_, err = svc.CreateItem(context.Background(), menu.ItemInput{Name: "Fries", BasePrice: 599})
	require.Error(t, err)
}

func TestSetAvailabilityUnknownItem(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SetAvailability(context.Background(), uuid.New(), false)
	require.Error(t, err)
}
