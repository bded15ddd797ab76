package mount

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"remila_sections/internal/content"
	"remila_sections/internal/content/mocks"
	"remila_sections/internal/domain"
	"remila_sections/internal/widget"
)

type RegistryTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	store    *mocks.MockStore
	page     *Page
	logs     *bytes.Buffer
	registry *Registry
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.page = NewPage("news-box", "sponsor-box")
	s.logs = &bytes.Buffer{}

	logger := slog.New(slog.NewJSONHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	factory := widget.NewFactory(content.NewClient(s.store, 0, logger), nil, logger)
	s.registry = NewRegistry(s.page, factory, logger)
}

func (s *RegistryTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) expectNews(titles ...string) {
	s.store.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Query, dest any) error {
			rows := make([]domain.NewsItem, 0, len(titles))
			for i, t := range titles {
				rows = append(rows, domain.NewsItem{ID: t, Title: t, DisplayOrder: i + 1, IsPublished: true})
			}
			*(dest.(*[]domain.NewsItem)) = rows
			return nil
		})
}

func (s *RegistryTestSuite) html(id string) string {
	el, ok := s.page.Element(id)
	s.Require().True(ok)
	return string(el.HTML())
}

func (s *RegistryTestSuite) TestRender_WritesIntoContainer() {
	s.expectNews("Opening ceremony")

	h := s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))

	s.Require().NotNil(h)
	s.Equal("news-box", h.ContainerID())
	s.True(s.registry.Mounted("news-box"))
	s.Contains(s.html("news-box"), "Opening ceremony")
	s.Empty(s.html("sponsor-box"))
}

func (s *RegistryTestSuite) TestRenderThenUnmount_LeavesEmptyContainer() {
	s.expectNews("Opening ceremony")

	s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))
	s.registry.Unmount("news-box")

	_, ok := s.page.Container("news-box")
	s.True(ok)
	s.Empty(s.html("news-box"))
	s.False(s.registry.Mounted("news-box"))
}

func (s *RegistryTestSuite) TestUnmountTwice_IsNoop() {
	s.expectNews("a")

	h := s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))

	s.NotPanics(func() {
		s.registry.Unmount("news-box")
		s.registry.Unmount("news-box")
		h.Unmount()
	})
	s.Equal(0, s.registry.Len())
	s.Contains(s.logs.String(), "nothing mounted")
}

func (s *RegistryTestSuite) TestRenderTwice_TearsDownFirst() {
	s.expectNews("first")
	s.expectNews("second")

	first := s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))
	second := s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))

	s.Equal(1, s.registry.Len())
	s.Equal(widget.StateIdle, first.Instance().State())
	s.Equal(widget.StateLoaded, second.Instance().State())
	s.Contains(s.html("news-box"), "second")
	s.NotContains(s.html("news-box"), "first")

	// A stale handle must not unmount its replacement.
	first.Unmount()
	s.True(s.registry.Mounted("news-box"))
	s.Contains(s.html("news-box"), "second")
}

func (s *RegistryTestSuite) TestRender_MissingContainer() {
	h := s.registry.Render(context.Background(), widget.KindNews, "nowhere", widget.DefaultConfig("acme"))

	s.Nil(h)
	s.Equal(0, s.registry.Len())
	s.Contains(s.logs.String(), "container not found")
}

func (s *RegistryTestSuite) TestRender_UnknownType() {
	h := s.registry.Render(context.Background(), widget.Kind("gallery"), "news-box", widget.DefaultConfig("acme"))

	s.Nil(h)
	s.Empty(s.html("news-box"))
	s.Contains(s.logs.String(), "unknown widget type")
}

func (s *RegistryTestSuite) TestRender_InvalidConfigShowsMessages() {
	s.expectNews("live")
	s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))

	h := s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.Config{MaxItems: 99})

	s.Nil(h)
	s.False(s.registry.Mounted("news-box"))
	out := s.html("news-box")
	s.Contains(out, "siteSlug is required")
	s.Contains(out, "maxItems must be at most 50")
	s.NotContains(out, "live")
}

func (s *RegistryTestSuite) TestUnmountAll() {
	s.expectNews("a")
	s.store.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	s.registry.Render(context.Background(), widget.KindNews, "news-box", widget.DefaultConfig("acme"))
	s.registry.Render(context.Background(), widget.KindSponsors, "sponsor-box", widget.DefaultConfig("acme"))
	s.Equal(2, s.registry.Len())

	s.registry.UnmountAll()

	s.Equal(0, s.registry.Len())
	s.Empty(s.html("news-box"))
	s.Empty(s.html("sponsor-box"))
}
