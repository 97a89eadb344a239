package meta

// schema.org shapes used in JSON-LD blocks. Field order is the order written.

const schemaContext = "https://schema.org"

type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

func breadcrumbs(items ...ListItem) BreadcrumbList {
	for i := range items {
		items[i].Type = "ListItem"
		items[i].Position = i + 1
	}
	return BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList", ItemListElement: items}
}

type LocalBusiness struct {
	Context         string        `json:"@context"`
	Type            string        `json:"@type"`
	ID              string        `json:"@id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	URL             string        `json:"url"`
	AreaServed      Place         `json:"areaServed"`
	PriceRange      string        `json:"priceRange,omitempty"`
	Address         PostalAddress `json:"address"`
	OpeningHours    string        `json:"openingHours,omitempty"`
	HasOfferCatalog *OfferCatalog `json:"hasOfferCatalog,omitempty"`
}

type Place struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type PostalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	AddressCountry  string `json:"addressCountry"`
}

type OfferCatalog struct {
	Type            string         `json:"@type"`
	Name            string         `json:"name"`
	ItemListElement []ServiceOffer `json:"itemListElement"`
}

type ServiceOffer struct {
	Type        string  `json:"@type"`
	ItemOffered Service `json:"itemOffered"`
}

type Service struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type Product struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Brand       Brand  `json:"brand"`
	Offers      *Offer `json:"offers,omitempty"`
	Category    string `json:"category,omitempty"`
}

type Brand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type Offer struct {
	Type          string       `json:"@type"`
	URL           string       `json:"url"`
	PriceCurrency string       `json:"priceCurrency"`
	Price         string       `json:"price"`
	Availability  string       `json:"availability"`
	ItemCondition string       `json:"itemCondition"`
	Seller        Organization `json:"seller"`
}

type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type WebPage struct {
	Context     string  `json:"@context"`
	Type        string  `json:"@type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	InLanguage  string  `json:"inLanguage,omitempty"`
	IsPartOf    WebSite `json:"isPartOf"`
}

type WebSite struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

func faqPage(pairs ...[2]string) FAQPage {
	qs := make([]Question, 0, len(pairs))
	for _, p := range pairs {
		qs = append(qs, Question{Type: "Question", Name: p[0], AcceptedAnswer: Answer{Type: "Answer", Text: p[1]}})
	}
	return FAQPage{Context: schemaContext, Type: "FAQPage", MainEntity: qs}
}

// ItemList carries products without their own pages, priced as a range.
type ItemList struct {
	Context         string          `json:"@context"`
	Type            string          `json:"@type"`
	Name            string          `json:"name"`
	ItemListElement []ListedProduct `json:"itemListElement"`
}

type ListedProduct struct {
	Type        string         `json:"@type"`
	Position    int            `json:"position"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Offers      AggregateOffer `json:"offers"`
}

type AggregateOffer struct {
	Type          string `json:"@type"`
	PriceCurrency string `json:"priceCurrency"`
	LowPrice      string `json:"lowPrice"`
	HighPrice     string `json:"highPrice"`
}
