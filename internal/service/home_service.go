package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/internal/service/homelayout"
)

const (
	publicHomeCacheKey = "home:public"
	// homeGenerationKey увеличивается после каждого сохранения раскладки;
	// снимок публичной главной хранится под ключом своего поколения
	homeGenerationKey = "home:generation"
)

func publicHomeKey(generation int64) string {
	return fmt.Sprintf("%s:v%d", publicHomeCacheKey, generation)
}

// HomeContent — три коллекции главной страницы в том виде, в каком их редактирует админка
type HomeContent struct {
	Banners      []entity.Banner      `json:"banners"`
	Sections     []entity.HomeSection `json:"sections"`
	PromoBanners []entity.PromoBanner `json:"promo_banners"`
}

// HomeService управляет содержимым главной страницы мобильного приложения
type HomeService struct {
	bannerRepo  repository.BannerRepository
	sectionRepo repository.HomeSectionRepository
	promoRepo   repository.PromoBannerRepository
	cacheRepo   repository.CacheRepository
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewHomeService создаёт сервис главной страницы
func NewHomeService(
	bannerRepo repository.BannerRepository,
	sectionRepo repository.HomeSectionRepository,
	promoRepo repository.PromoBannerRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *HomeService {
	return &HomeService{
		bannerRepo:  bannerRepo,
		sectionRepo: sectionRepo,
		promoRepo:   promoRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		logger:      logger.Named("home"),
	}
}

// GetLayout параллельно загружает три коллекции; первая ошибка отменяет остальные запросы
func (s *HomeService) GetLayout(ctx context.Context) (*HomeContent, error) {
	var content HomeContent
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		banners, err := s.bannerRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("load banners: %w", err)
		}
		content.Banners = banners
		return nil
	})
	g.Go(func() error {
		sections, err := s.sectionRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		content.Sections = sections
		return nil
	})
	g.Go(func() error {
		promos, err := s.promoRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("load promo banners: %w", err)
		}
		content.PromoBanners = promos
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &content, nil
}

// Preview собирает раскладку для админки: с неактивными секциями и неразмещёнными слотами
func (s *HomeService) Preview(ctx context.Context) (homelayout.Layout, error) {
	content, err := s.GetLayout(ctx)
	if err != nil {
		return homelayout.Layout{}, err
	}
	return homelayout.Compose(content.Banners, content.Sections, content.PromoBanners), nil
}

// PublicHome возвращает раскладку для мобильного приложения, читая через кеш.
// Поколение читается до загрузки коллекций, поэтому снимок, собранный до
// сохранения, попадает под старый ключ и новыми читателями не используется.
func (s *HomeService) PublicHome(ctx context.Context) (homelayout.Layout, error) {
	generation, err := s.homeGeneration(ctx)
	if err != nil {
		s.logger.Warn("home cache read failed", zap.Error(err))
		return s.composePublic(ctx)
	}
	key := publicHomeKey(generation)

	var cached homelayout.Layout
	err = s.cacheRepo.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("home cache read failed", zap.Error(err))
	}

	public, err := s.composePublic(ctx)
	if err != nil {
		return homelayout.Layout{}, err
	}
	if err := s.cacheRepo.SetJSON(ctx, key, public, s.cacheTTL); err != nil {
		s.logger.Warn("home cache write failed", zap.Error(err))
	}
	return public, nil
}

func (s *HomeService) composePublic(ctx context.Context) (homelayout.Layout, error) {
	layout, err := s.Preview(ctx)
	if err != nil {
		return homelayout.Layout{}, err
	}
	return layout.Public(), nil
}

// homeGeneration возвращает текущее поколение раскладки; отсутствие ключа означает 0
func (s *HomeService) homeGeneration(ctx context.Context) (int64, error) {
	var generation int64
	err := s.cacheRepo.GetJSON(ctx, homeGenerationKey, &generation)
	if errors.Is(err, apperrors.ErrNotFound) {
		return 0, nil
	}
	return generation, err
}

// invalidatePublicHome переводит кеш на новое поколение и удаляет снимок предыдущего
func (s *HomeService) invalidatePublicHome(ctx context.Context) {
	generation, err := s.cacheRepo.Incr(ctx, homeGenerationKey)
	if err != nil {
		s.logger.Warn("home cache invalidation failed", zap.Error(err))
		return
	}
	if err := s.cacheRepo.Delete(ctx, publicHomeKey(generation-1)); err != nil {
		s.logger.Warn("stale home snapshot delete failed", zap.Int64("generation", generation-1), zap.Error(err))
	}
}

// SaveLayout проверяет пакет, переписывает позиции по порядку в списке
// и сохраняет три коллекции параллельно. Ошибки всех коллекций возвращаются вместе.
func (s *HomeService) SaveLayout(ctx context.Context, content HomeContent) (*HomeContent, error) {
	if err := validateHomeContent(&content); err != nil {
		return nil, err
	}
	assignPositions(&content)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		if err := s.bannerRepo.Sync(ctx, content.Banners); err != nil {
			return fmt.Errorf("save banners: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := s.sectionRepo.Sync(ctx, content.Sections); err != nil {
			return fmt.Errorf("save sections: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := s.promoRepo.Sync(ctx, content.PromoBanners); err != nil {
			return fmt.Errorf("save promo banners: %w", err)
		}
		return nil
	})
	saveErr := p.Wait()

	// часть коллекций могла сохраниться, поэтому кеш сбрасываем в любом случае
	s.invalidatePublicHome(ctx)

	if saveErr != nil {
		s.logger.Error("home layout save failed", zap.Error(saveErr))
		return nil, saveErr
	}

	s.logger.Info("home layout saved",
		zap.Int("banners", len(content.Banners)),
		zap.Int("sections", len(content.Sections)),
		zap.Int("promo_banners", len(content.PromoBanners)))
	return &content, nil
}

// assignPositions нумерует элементы плотно (0..n-1) по текущему порядку в списке;
// баннеры слотов нумеруются отдельно внутри каждого слота.
func assignPositions(content *HomeContent) {
	for i := range content.Banners {
		content.Banners[i].Position = i
	}
	for i := range content.Sections {
		content.Sections[i].OrderIndex = i
	}
	perSlot := make(map[entity.PromoSlot]int)
	for i := range content.PromoBanners {
		slot := content.PromoBanners[i].Slot
		content.PromoBanners[i].Position = perSlot[slot]
		perSlot[slot]++
	}
}

func validateHomeContent(content *HomeContent) error {
	var problems []string
	for i, b := range content.Banners {
		if strings.TrimSpace(b.ImageURL) == "" {
			problems = append(problems, fmt.Sprintf("banners[%d]: image_url is required", i))
		}
	}
	for i, sec := range content.Sections {
		if !sec.Type.IsValid() {
			problems = append(problems, fmt.Sprintf("sections[%d]: unknown type %q", i, sec.Type))
		}
		if strings.TrimSpace(sec.Title) == "" {
			problems = append(problems, fmt.Sprintf("sections[%d]: title is required", i))
		}
		if sec.Type == entity.SectionCategoryProducts && sec.CategoryID == nil {
			problems = append(problems, fmt.Sprintf("sections[%d]: category_id is required for %s", i, sec.Type))
		}
	}
	for i, p := range content.PromoBanners {
		if !p.Slot.IsValid() {
			problems = append(problems, fmt.Sprintf("promo_banners[%d]: unknown slot %q", i, p.Slot))
		}
		if strings.TrimSpace(p.ImageURL) == "" {
			problems = append(problems, fmt.Sprintf("promo_banners[%d]: image_url is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
