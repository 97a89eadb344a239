package meta

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/slug"
	"git.home.luguber.info/inful/seogen/internal/source"
)

// BuildCity builds the tag set for /city/<slug>.
func BuildCity(c source.City, citySlug string, site Site) (TagSet, error) {
	if strings.TrimSpace(c.Name) == "" {
		return TagSet{}, errors.InvalidNameError(c.Name)
	}
	if !slug.Valid(citySlug) {
		return TagSet{}, errors.ValidationError("city has no valid slug").
			WithContext("name", c.Name).WithContext("slug", citySlug).Build()
	}
	name := c.Name
	loc := Locative(name, site.LocativeSuffix)
	regionPart := ""
	if c.Region != "" {
		regionPart = ", " + c.Region
	}
	url := site.CityURL(citySlug)

	title := fmt.Sprintf("Доставка цветов %s%s — %s | Купить розы, тюльпаны, пионы с доставкой в %s",
		name, regionPart, site.Name, loc)
	description := fmt.Sprintf("Заказать свежие цветы с доставкой в %s%s от %s. "+
		"Букеты роз, тюльпанов, пионов, хризантем за 2 часа. "+
		"Композиции ручной работы, стабилизированный мох. Круглосуточный заказ онлайн в %s!",
		name, regionPart, site.Name, loc)

	keywords := make([]string, 0, len(cityKeywordPrefixes))
	for _, p := range cityKeywordPrefixes {
		keywords = append(keywords, p+" "+name)
	}

	deliveryIn := "Доставка цветов в " + loc
	set := TagSet{
		Title:       title,
		Description: description,
		Keywords:    strings.Join(keywords, ", "),
		Canonical:   url,
		Robots:      "index, follow",
		OpenGraph:   site.openGraph("website", title, description, url, ""),
		Twitter:     site.twitter(title, description, ""),
		StructuredData: []any{
			breadcrumbs(
				ListItem{Name: "Главная", Item: site.HomeURL()},
				ListItem{Name: deliveryIn, Item: url},
			),
			LocalBusiness{
				Context:     schemaContext,
				Type:        "LocalBusiness",
				ID:          url,
				Name:        site.Name + " — " + deliveryIn,
				Description: description,
				URL:         url,
				AreaServed:  Place{Type: "City", Name: name},
				PriceRange:  "₽₽",
				Address: PostalAddress{
					Type:            "PostalAddress",
					AddressLocality: name,
					AddressRegion:   c.Region,
					AddressCountry:  "RU",
				},
				OpeningHours: "Mo-Su 09:00-21:00",
				HasOfferCatalog: &OfferCatalog{
					Type: "OfferCatalog",
					Name: deliveryIn,
					ItemListElement: []ServiceOffer{
						{Type: "Offer", ItemOffered: Service{Type: "Service", Name: "Букеты с доставкой в " + loc}},
						{Type: "Offer", ItemOffered: Service{Type: "Service", Name: "Композиции из стабилизированного мха в " + loc}},
					},
				},
			},
			cityFAQ(loc),
			cityOffers(loc),
		},
	}
	return set, nil
}

func cityFAQ(loc string) FAQPage {
	return faqPage(
		[2]string{
			"Сколько стоит букет роз в " + loc + "?",
			"Цена букета роз зависит от количества и сорта: букет из 25 роз от 2500₽, из 51 розы от 4500₽, из 101 розы от 8500₽.",
		},
		[2]string{
			"Можно ли купить тюльпаны круглый год?",
			"Тюльпаны доступны круглый год, но пик сезона — с февраля по май. В этот период самый большой выбор сортов и расцветок.",
		},
		[2]string{
			"Как быстро можно доставить букет из пионов в " + loc + "?",
			"Стандартная доставка букета из пионов занимает 2-4 часа с момента заказа. Пионы — сезонные цветы (май-июль).",
		},
		[2]string{
			"Можно ли заказать букет из орхидей с доставкой?",
			"Да, орхидеи доступны круглый год. Можно заказать как срезанные орхидеи в букете, так и живые орхидеи в горшках.",
		},
		[2]string{
			"Какие способы оплаты вы принимаете?",
			"Мы принимаем оплату банковскими картами (Visa, MasterCard, МИР), наличными курьеру при получении, а также безналичный расчет для юридических лиц.",
		},
		[2]string{
			"Что делать, если букет не понравился?",
			"Если вы не удовлетворены качеством букета, свяжитесь с нашей службой поддержки в течение 24 часов. Мы либо заменим букет бесплатно, либо вернем полную стоимость заказа.",
		},
	)
}

// cityOffers lists the main flower lines with their price ranges in rubles.
func cityOffers(loc string) ItemList {
	lines := []struct{ name, description, low, high string }{
		{"Букет роз в " + loc, "Купить букет роз в " + loc + " с доставкой за 2 часа", "2500", "8500"},
		{"Букет тюльпанов в " + loc, "Купить свежие тюльпаны в " + loc + " с доставкой", "1500", "5000"},
		{"Букет пионов в " + loc, "Купить пионы в " + loc + " — сезонные цветы с доставкой", "3000", "7000"},
		{"Орхидеи в " + loc, "Купить орхидеи в горшках и срезке в " + loc, "2000", "6000"},
	}
	items := make([]ListedProduct, 0, len(lines))
	for i, l := range lines {
		items = append(items, ListedProduct{
			Type:        "Product",
			Position:    i + 1,
			Name:        l.name,
			Description: l.description,
			Offers:      AggregateOffer{Type: "AggregateOffer", PriceCurrency: "RUB", LowPrice: l.low, HighPrice: l.high},
		})
	}
	return ItemList{Context: schemaContext, Type: "ItemList", Name: "Цветы с доставкой в " + loc, ItemListElement: items}
}

var cityKeywordPrefixes = []string{
	"доставка цветов",
	"купить розы",
	"букет роз",
	"тюльпаны",
	"пионы",
	"хризантемы",
	"орхидеи",
	"цветы с доставкой",
	"заказать букет",
	"флорист",
}
