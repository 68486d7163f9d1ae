package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/internal/service/homelayout"
)

type homeMocks struct {
	banners  *MockBannerRepo
	sections *MockSectionRepo
	promos   *MockPromoRepo
	cache    *MockCacheRepo
}

func newTestHomeService() (*HomeService, homeMocks) {
	m := homeMocks{
		banners:  new(MockBannerRepo),
		sections: new(MockSectionRepo),
		promos:   new(MockPromoRepo),
		cache:    new(MockCacheRepo),
	}
	svc := NewHomeService(m.banners, m.sections, m.promos, m.cache, time.Minute, zap.NewNop())
	return svc, m
}

func TestHomeService_SaveLayout_RewritesPositions(t *testing.T) {
	svc, m := newTestHomeService()

	content := HomeContent{
		Banners: []entity.Banner{
			{ID: 7, ImageURL: "https://cdn/a.jpg", Position: 40},
			{ImageURL: "https://cdn/b.jpg", Position: 3},
		},
		Sections: []entity.HomeSection{
			{ID: 2, Type: entity.SectionBestSellers, Title: "Best", OrderIndex: 9},
			{Type: entity.SectionCategories, Title: "Categories", OrderIndex: 9},
		},
		PromoBanners: []entity.PromoBanner{
			{Slot: entity.SlotEndOfPage, ImageURL: "https://cdn/p1.jpg", Position: 5},
			{Slot: entity.SlotAfterCategories, ImageURL: "https://cdn/p2.jpg", Position: 5},
			{Slot: entity.SlotEndOfPage, ImageURL: "https://cdn/p3.jpg", Position: 1},
		},
	}

	m.banners.On("Sync", mock.MatchedBy(func(b []entity.Banner) bool {
		return len(b) == 2 && b[0].Position == 0 && b[1].Position == 1 && b[0].ID == 7
	})).Return(nil)
	m.sections.On("Sync", mock.MatchedBy(func(s []entity.HomeSection) bool {
		return len(s) == 2 && s[0].OrderIndex == 0 && s[1].OrderIndex == 1
	})).Return(nil)
	m.promos.On("Sync", mock.MatchedBy(func(p []entity.PromoBanner) bool {
		return len(p) == 3 && p[0].Position == 0 && p[1].Position == 0 && p[2].Position == 1
	})).Return(nil)
	m.cache.On("Incr", homeGenerationKey).Return(int64(3), nil)
	m.cache.On("Delete", publicHomeKey(2)).Return(nil)

	saved, err := svc.SaveLayout(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Banners[1].Position)
	assert.Equal(t, 1, saved.Sections[1].OrderIndex)

	m.banners.AssertExpectations(t)
	m.sections.AssertExpectations(t)
	m.promos.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestHomeService_SaveLayout_ReportsEveryFailedCollection(t *testing.T) {
	svc, m := newTestHomeService()

	bannerErr := errors.New("banners table locked")
	promoErr := errors.New("promo table locked")
	m.banners.On("Sync", mock.Anything).Return(bannerErr)
	m.sections.On("Sync", mock.Anything).Return(nil)
	m.promos.On("Sync", mock.Anything).Return(promoErr)
	m.cache.On("Incr", homeGenerationKey).Return(int64(1), nil)
	m.cache.On("Delete", publicHomeKey(0)).Return(nil)

	_, err := svc.SaveLayout(context.Background(), HomeContent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, bannerErr)
	assert.ErrorIs(t, err, promoErr)
	assert.Contains(t, err.Error(), "save banners")
	assert.Contains(t, err.Error(), "save promo banners")

	// кеш сбрасывается даже при частичном сохранении
	m.cache.AssertCalled(t, "Incr", homeGenerationKey)
}

func TestHomeService_SaveLayout_Validation(t *testing.T) {
	svc, m := newTestHomeService()

	content := HomeContent{
		Banners:  []entity.Banner{{ImageURL: "  "}},
		Sections: []entity.HomeSection{{Type: "carousel", Title: "x"}, {Type: entity.SectionCategoryProducts, Title: "Shoes"}},
		PromoBanners: []entity.PromoBanner{
			{Slot: "after_trending", ImageURL: "https://cdn/p.jpg"},
		},
	}

	_, err := svc.SaveLayout(context.Background(), content)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "banners[0]: image_url is required")
	assert.Contains(t, err.Error(), `sections[0]: unknown type "carousel"`)
	assert.Contains(t, err.Error(), "sections[1]: category_id is required")
	assert.Contains(t, err.Error(), `promo_banners[0]: unknown slot "after_trending"`)

	m.banners.AssertNotCalled(t, "Sync", mock.Anything)
	m.cache.AssertNotCalled(t, "Incr", mock.Anything)
}

func TestHomeService_GetLayout_FailsOnAnyCollection(t *testing.T) {
	svc, m := newTestHomeService()

	m.banners.On("List").Return([]entity.Banner{}, nil)
	m.sections.On("List").Return(nil, errors.New("connection reset"))
	m.promos.On("List").Return([]entity.PromoBanner{}, nil)

	content, err := svc.GetLayout(context.Background())
	require.Error(t, err)
	assert.Nil(t, content)
	assert.Contains(t, err.Error(), "load sections")
}

func TestHomeService_PublicHome_ComposesAndCaches(t *testing.T) {
	svc, m := newTestHomeService()

	expectGeneration(m.cache, 2)
	m.cache.On("GetJSON", publicHomeKey(2), mock.Anything).Return(apperrors.ErrNotFound)
	m.banners.On("List").Return([]entity.Banner{{ID: 1, ImageURL: "https://cdn/a.jpg", IsActive: true}}, nil)
	m.sections.On("List").Return([]entity.HomeSection{
		{ID: 1, Type: entity.SectionCategories, Title: "Categories", IsActive: true},
		{ID: 2, Type: entity.SectionTrending, Title: "Trending", IsActive: false, OrderIndex: 1},
	}, nil)
	m.promos.On("List").Return([]entity.PromoBanner{}, nil)
	m.cache.On("SetJSON", publicHomeKey(2), mock.Anything, time.Minute).Return(nil)

	layout, err := svc.PublicHome(context.Background())
	require.NoError(t, err)

	require.Len(t, layout.Items, 2)
	assert.Equal(t, homelayout.KindCarousel, layout.Items[0].Kind)
	assert.Equal(t, homelayout.KindSection, layout.Items[1].Kind)
	assert.Equal(t, "Categories", layout.Items[1].Section.Title)
	m.cache.AssertExpectations(t)
}

func TestHomeService_PublicHome_CacheHit(t *testing.T) {
	svc, m := newTestHomeService()

	expectGeneration(m.cache, 0)
	m.cache.On("GetJSON", publicHomeKey(0), mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*homelayout.Layout)
			dest.Items = []homelayout.Item{{Kind: homelayout.KindSection, Active: true}}
		}).
		Return(nil)

	layout, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	assert.Len(t, layout.Items, 1)
	m.banners.AssertNotCalled(t, "List")
}

func TestHomeService_PublicHome_CacheFailureFallsThrough(t *testing.T) {
	svc, m := newTestHomeService()

	m.cache.On("GetJSON", homeGenerationKey, mock.Anything).Return(errors.New("redis down"))
	m.banners.On("List").Return([]entity.Banner{}, nil)
	m.sections.On("List").Return([]entity.HomeSection{}, nil)
	m.promos.On("List").Return([]entity.PromoBanner{}, nil)

	layout, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, layout.Items)
	assert.Empty(t, layout.Items)
	// без поколения снимок не пишется
	m.cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestHomeService_PublicHome_SnapshotFromBeforeSaveIsNotServed(t *testing.T) {
	cache := newMemoryCache()
	banners, sections, promos := new(MockBannerRepo), new(MockSectionRepo), new(MockPromoRepo)
	svc := NewHomeService(banners, sections, promos, cache, time.Minute, zap.NewNop())

	banners.On("List").Return([]entity.Banner{}, nil)
	promos.On("List").Return([]entity.PromoBanner{}, nil)
	// первый читатель загружает секции, и в этот момент сохранение завершается
	sections.On("List").
		Run(func(mock.Arguments) {
			_, _ = cache.Incr(context.Background(), homeGenerationKey)
		}).
		Return([]entity.HomeSection{{ID: 1, Type: entity.SectionTrending, Title: "Old", IsActive: true}}, nil).
		Once()
	sections.On("List").
		Return([]entity.HomeSection{{ID: 1, Type: entity.SectionTrending, Title: "New", IsActive: true}}, nil)

	stale, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	require.Len(t, stale.Items, 1)
	assert.Equal(t, "Old", stale.Items[0].Section.Title)

	fresh, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh.Items, 1)
	assert.Equal(t, "New", fresh.Items[0].Section.Title)

	// третий запрос обслуживается из снимка нового поколения
	cached, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New", cached.Items[0].Section.Title)
	sections.AssertNumberOfCalls(t, "List", 2)
}

func TestHomeService_SaveLayout_NewGenerationInvalidatesSnapshot(t *testing.T) {
	cache := newMemoryCache()
	banners, sections, promos := new(MockBannerRepo), new(MockSectionRepo), new(MockPromoRepo)
	svc := NewHomeService(banners, sections, promos, cache, time.Minute, zap.NewNop())

	banners.On("List").Return([]entity.Banner{}, nil)
	promos.On("List").Return([]entity.PromoBanner{}, nil)
	sections.On("List").Return([]entity.HomeSection{}, nil)
	banners.On("Sync", mock.Anything).Return(nil)
	sections.On("Sync", mock.Anything).Return(nil)
	promos.On("Sync", mock.Anything).Return(nil)

	_, err := svc.PublicHome(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.has(publicHomeKey(0)))

	_, err = svc.SaveLayout(context.Background(), HomeContent{})
	require.NoError(t, err)
	assert.False(t, cache.has(publicHomeKey(0)))

	_, err = svc.PublicHome(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.has(publicHomeKey(1)))
	sections.AssertNumberOfCalls(t, "List", 2)
}

func TestHomeService_GetLayout_CancelsSiblingQueries(t *testing.T) {
	svc, m := newTestHomeService()
	blocking := &blockingBannerRepo{}
	svc.bannerRepo = blocking

	m.sections.On("List").Return(nil, errors.New("connection reset"))
	m.promos.On("List").Return([]entity.PromoBanner{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetLayout(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load sections")
		assert.ErrorIs(t, blocking.err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("GetLayout did not cancel the pending banner query")
	}
}

// blockingBannerRepo отвечает только после отмены контекста
type blockingBannerRepo struct {
	MockBannerRepo
	err error
}

func (r *blockingBannerRepo) List(ctx context.Context) ([]entity.Banner, error) {
	<-ctx.Done()
	r.err = ctx.Err()
	return nil, r.err
}

func expectGeneration(cache *MockCacheRepo, generation int64) {
	cache.On("GetJSON", homeGenerationKey, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*int64) = generation
		}).
		Return(nil)
}

// memoryCache — CacheRepository в памяти с той же семантикой промаха, что и Redis
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if raw, ok := c.data[key]; ok {
		var err error
		if n, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			return 0, err
		}
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
