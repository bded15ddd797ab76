package domain

// Collection names one of the remote content tables a widget can read.
type Collection string

const (
	CollectionNews             Collection = "news"
	CollectionJudges           Collection = "judges"
	CollectionMainPrizes       Collection = "mainPrizes"
	CollectionAdditionalPrizes Collection = "additionalPrizes"
	CollectionFAQs             Collection = "faqs"
	CollectionWorkExamples     Collection = "workExamples"
	CollectionSponsors         Collection = "sponsors"
	CollectionResources        Collection = "resources"
	CollectionSiteSettings     Collection = "siteSettings"
)

// CollectionInfo describes how a collection maps onto its backing table.
type CollectionInfo struct {
	Table     string
	Ordered   bool // has display_order
	Published bool // has is_published
	Category  bool // supports the category filter
}

var collections = map[Collection]CollectionInfo{
	CollectionNews:             {Table: "news", Ordered: true, Published: true},
	CollectionJudges:           {Table: "judges", Ordered: true, Published: true},
	CollectionMainPrizes:       {Table: "main_prizes", Ordered: true, Published: true},
	CollectionAdditionalPrizes: {Table: "additional_prizes", Ordered: true, Published: true},
	CollectionFAQs:             {Table: "faqs", Ordered: true, Published: true},
	CollectionWorkExamples:     {Table: "work_examples", Ordered: true, Published: true},
	CollectionSponsors:         {Table: "sponsors", Ordered: true, Published: true},
	CollectionResources:        {Table: "resources", Ordered: true, Published: true, Category: true},
	CollectionSiteSettings:     {Table: "site_settings"},
}

// Info returns the table mapping for c. The boolean is false for collections
// outside the fixed set.
func (c Collection) Info() (CollectionInfo, bool) {
	info, ok := collections[c]
	return info, ok
}

func (c Collection) Valid() bool {
	_, ok := collections[c]
	return ok
}

func (c Collection) String() string {
	return string(c)
}

// Collections returns the fixed collection set in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionNews,
		CollectionJudges,
		CollectionMainPrizes,
		CollectionAdditionalPrizes,
		CollectionFAQs,
		CollectionWorkExamples,
		CollectionSponsors,
		CollectionResources,
		CollectionSiteSettings,
	}
}

// Query is a single read against one collection, always scoped to a site.
type Query struct {
	Collection Collection
	SiteSlug   string
	Limit      int    // 0 means no limit
	Category   string // resources only
}
