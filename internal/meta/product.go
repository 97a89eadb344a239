package meta

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/source"
)

const defaultProductCategory = "Букеты"

// BuildProduct builds the tag set for /product/<id>. The price is written as
// received, without currency conversion or float formatting.
func BuildProduct(p source.Product, site Site) (TagSet, error) {
	if p.ID <= 0 {
		return TagSet{}, errors.ValidationError(fmt.Sprintf("product has invalid id %d", p.ID)).Build()
	}
	if strings.TrimSpace(p.Name) == "" {
		return TagSet{}, errors.InvalidNameError(p.Name).WithContext("id", p.ID)
	}
	if !p.Price.Valid() {
		return TagSet{}, errors.ValidationError("product has invalid price").
			WithContext("id", p.ID).WithContext("price", p.Price.String()).Build()
	}
	url := site.ProductURL(p.ID)
	price := p.Price.String()

	title := fmt.Sprintf("%s — купить с доставкой | %s", p.Name, site.Name)
	headline := p.Name
	if price != "" {
		headline = fmt.Sprintf("%s — %s₽", p.Name, price)
	}
	description := fmt.Sprintf("Служба доставки цветов %s. %s. Свежие букеты с доставкой за 1.5 часа после оплаты. Заказ онлайн 24/7!",
		site.Name, headline)

	category := p.Category
	if category == "" {
		category = defaultProductCategory
	}

	product := Product{
		Context:     schemaContext,
		Type:        "Product",
		Name:        p.Name,
		Description: p.Description,
		Image:       p.ImageURL,
		Brand:       Brand{Type: "Brand", Name: site.Name},
		Category:    category,
	}
	if price != "" {
		product.Offers = &Offer{
			Type:          "Offer",
			URL:           url,
			PriceCurrency: "RUB",
			Price:         price,
			Availability:  "https://schema.org/InStock",
			ItemCondition: "https://schema.org/NewCondition",
			Seller:        Organization{Type: "Organization", Name: site.Name, URL: site.BaseURL()},
		}
	}

	return TagSet{
		Title:       title,
		Description: description,
		Keywords:    fmt.Sprintf("%s, купить %s, букет, цветы с доставкой, %s", p.Name, p.Name, strings.ToLower(site.Name)),
		Canonical:   url,
		Robots:      "index, follow",
		OpenGraph:   site.openGraph("product", title, description, url, p.ImageURL),
		Twitter:     site.twitter(title, description, p.ImageURL),
		StructuredData: []any{
			product,
			breadcrumbs(
				ListItem{Name: "Главная", Item: site.HomeURL()},
				ListItem{Name: "Каталог", Item: site.StaticURL("catalog")},
				ListItem{Name: p.Name, Item: url},
			),
		},
	}, nil
}
