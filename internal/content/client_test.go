package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"remila_sections/internal/content/mocks"
	"remila_sections/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	store  *mocks.MockStore
	client *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.client = NewClient(s.store, 0, logger)
}

func (s *ClientTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// fill returns a DoAndReturn func that copies rows into the destination slice.
func fill[T any](rows []T) func(context.Context, domain.Query, any) error {
	return func(_ context.Context, _ domain.Query, dest any) error {
		*(dest.(*[]T)) = rows
		return nil
	}
}

func (s *ClientTestSuite) TestGetNews_Success() {
	ctx := context.Background()
	rows := []domain.NewsItem{
		{ID: "n1", Title: "Kickoff", DisplayOrder: 1, IsPublished: true},
		{ID: "n2", Title: "Deadline", DisplayOrder: 2, IsPublished: true},
	}

	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionNews, SiteSlug: "acme", Limit: 5}, gomock.Any()).
		DoAndReturn(fill(rows))

	res := s.client.GetNews(ctx, "acme", 5)

	s.False(res.Failed())
	s.Equal(rows, res.Data)
}

func (s *ClientTestSuite) TestList_EmptyVersusError() {
	ctx := context.Background()

	s.store.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	empty := s.client.GetJudges(ctx, "acme", 0)

	s.store.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	failed := s.client.GetJudges(ctx, "acme", 0)

	s.NotNil(empty.Data)
	s.NotNil(failed.Data)
	s.Empty(empty.Data)
	s.Empty(failed.Data)
	s.Equal(empty.Data, failed.Data)

	s.Empty(empty.Error)
	s.Contains(failed.Error, "connection refused")
	s.Contains(failed.Error, "judges")
}

func (s *ClientTestSuite) TestList_RejectsMissingSiteSlug() {
	res := s.client.GetSponsors(context.Background(), "", 3)

	s.True(res.Failed())
	s.Equal(ErrMissingSiteSlug.Error(), res.Error)
	s.NotNil(res.Data)
}

func (s *ClientTestSuite) TestList_RejectsUnknownCollection() {
	res := List[domain.NewsItem](context.Background(), s.client, domain.Query{Collection: "blog", SiteSlug: "acme"})

	s.True(res.Failed())
	s.Contains(res.Error, "unknown collection")
}

func (s *ClientTestSuite) TestList_RejectsNegativeLimit() {
	res := s.client.GetFAQs(context.Background(), "acme", -1)

	s.Equal(ErrInvalidLimit.Error(), res.Error)
}

func (s *ClientTestSuite) TestList_CategoryOnlyForResources() {
	res := List[domain.NewsItem](context.Background(), s.client, domain.Query{
		Collection: domain.CollectionNews, SiteSlug: "acme", Category: "rules",
	})
	s.True(res.Failed())

	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionResources, SiteSlug: "acme", Category: "rules"}, gomock.Any()).
		Return(nil)

	ok := s.client.GetResources(context.Background(), "acme", 0, "rules")
	s.False(ok.Failed())
}

func (s *ClientTestSuite) TestGetSiteSettings_LimitsToOneRow() {
	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionSiteSettings, SiteSlug: "acme", Limit: 1}, gomock.Any()).
		DoAndReturn(fill([]domain.SiteSettings{{ID: "s1", SiteSlug: "acme", SiteName: "Acme Awards"}}))

	res := s.client.GetSiteSettings(context.Background(), "acme")

	s.Require().Len(res.Data, 1)
	s.Equal("Acme Awards", res.Data[0].SiteName)
}

func (s *ClientTestSuite) TestGetPrizes_Success() {
	main := []domain.Prize{{ID: "m1", Title: "Grand prize", DisplayOrder: 1}}
	additional := []domain.Prize{{ID: "a1", Title: "Audience award", DisplayOrder: 1}}

	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionMainPrizes, SiteSlug: "acme"}, gomock.Any()).
		DoAndReturn(fill(main))
	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionAdditionalPrizes, SiteSlug: "acme"}, gomock.Any()).
		DoAndReturn(fill(additional))

	res := s.client.GetPrizes(context.Background(), "acme")

	s.Empty(res.Error)
	s.Equal(main, res.Main)
	s.Equal(additional, res.Additional)
}

func (s *ClientTestSuite) TestGetPrizes_FailsClosed() {
	main := []domain.Prize{
		{ID: "m1", DisplayOrder: 1},
		{ID: "m2", DisplayOrder: 2},
		{ID: "m3", DisplayOrder: 3},
	}

	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionMainPrizes, SiteSlug: "acme"}, gomock.Any()).
		DoAndReturn(fill(main))
	s.store.EXPECT().
		Select(gomock.Any(), domain.Query{Collection: domain.CollectionAdditionalPrizes, SiteSlug: "acme"}, gomock.Any()).
		Return(errors.New("relation \"additional_prizes\" does not exist"))

	res := s.client.GetPrizes(context.Background(), "acme")

	s.Equal([]domain.Prize{}, res.Main)
	s.Equal([]domain.Prize{}, res.Additional)
	s.Contains(res.Error, "additionalPrizes")
	s.Contains(res.Error, "does not exist")
}

func (s *ClientTestSuite) TestResultJSON() {
	ok, err := json.Marshal(Result[domain.FAQ]{})
	s.Require().NoError(err)
	s.JSONEq(`{"data":[],"error":null}`, string(ok))

	failed, err := json.Marshal(Result[domain.FAQ]{Data: []domain.FAQ{}, Error: "boom"})
	s.Require().NoError(err)
	s.JSONEq(`{"data":[],"error":"boom"}`, string(failed))

	prizes, err := json.Marshal(PrizesResult{Error: "down"})
	s.Require().NoError(err)
	s.JSONEq(`{"main":[],"additional":[],"error":"down"}`, string(prizes))
}
