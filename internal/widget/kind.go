package widget

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"

	"remila_sections/internal/content"
	"remila_sections/internal/domain"
)

type Kind string

const (
	KindNews      Kind = "news"
	KindSponsors  Kind = "sponsors"
	KindResources Kind = "resources"
	KindJudges    Kind = "judges"
)

type loadFunc func(ctx context.Context, c *content.Client, q domain.Query) ([]Card, string)

type kindDef struct {
	title      string
	component  string
	collection domain.Collection
	load       loadFunc
}

var kinds = map[Kind]kindDef{
	KindNews: {
		title:      "Latest news",
		component:  "News",
		collection: domain.CollectionNews,
		load:       loader(newsCard),
	},
	KindSponsors: {
		title:      "Our sponsors",
		component:  "SponsorCompanies",
		collection: domain.CollectionSponsors,
		load:       loader(sponsorCard),
	},
	KindResources: {
		title:      "Downloads",
		component:  "ResourceDownload",
		collection: domain.CollectionResources,
		load:       loader(resourceCard),
	},
	KindJudges: {
		title:      "Judges",
		component:  "Judges",
		collection: domain.CollectionJudges,
		load:       loader(judgeCard),
	},
}

// Kinds lists every widget type in a stable order.
func Kinds() []Kind {
	return []Kind{KindNews, KindSponsors, KindResources, KindJudges}
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Component is the exported component name in the framework package.
func (k Kind) Component() string {
	return kinds[k].component
}

func (k Kind) Collection() domain.Collection {
	return kinds[k].collection
}

func (k Kind) Title() string {
	return kinds[k].title
}

func (k Kind) String() string {
	return string(k)
}

func loader[T any](toCard func(T) Card) loadFunc {
	return func(ctx context.Context, c *content.Client, q domain.Query) ([]Card, string) {
		res := content.List[T](ctx, c, q)
		if res.Failed() {
			return nil, res.Error
		}
		cards := make([]Card, 0, len(res.Data))
		for _, row := range res.Data {
			cards = append(cards, toCard(row))
		}
		return cards, ""
	}
}

func newsCard(n domain.NewsItem) Card {
	card := Card{
		ID:       n.ID,
		Order:    n.DisplayOrder,
		Title:    n.Title,
		ImageURL: str(n.ImageURL),
		Body:     ParseText(n.Content),
	}
	if n.PublishedAt != nil {
		card.Subtitle = n.PublishedAt.Format("2 January 2006")
	}
	return card
}

func sponsorCard(s domain.Sponsor) Card {
	card := Card{
		ID:       s.ID,
		Order:    s.DisplayOrder,
		Title:    s.Name,
		Badge:    str(s.Tier),
		ImageURL: str(s.LogoURL),
		LinkURL:  str(s.WebsiteURL),
		Body:     ParseText(str(s.Description)),
	}
	if card.LinkURL != "" {
		card.LinkText = "Visit website"
	}
	return card
}

func resourceCard(r domain.Resource) Card {
	card := Card{
		ID:       r.ID,
		Order:    r.DisplayOrder,
		Title:    r.Title,
		Badge:    str(r.Category),
		LinkURL:  r.FileURL,
		LinkText: "Download",
		Body:     ParseText(str(r.Description)),
	}
	if r.FileSize != nil && *r.FileSize > 0 {
		card.Subtitle = humanize.Bytes(uint64(*r.FileSize))
	}
	return card
}

func judgeCard(j domain.Judge) Card {
	var parts []string
	for _, p := range []*string{j.Title, j.Organization} {
		if s := str(p); s != "" {
			parts = append(parts, s)
		}
	}
	return Card{
		ID:       j.ID,
		Order:    j.DisplayOrder,
		Title:    j.Name,
		Subtitle: strings.Join(parts, " · "),
		ImageURL: str(j.PhotoURL),
		Body:     ParseText(str(j.Bio)),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
