package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type wireCity struct {
	ID         flexID `json:"id"`
	Name       string `json:"name"`
	Region     string `json:"region"`
	RegionName string `json:"region_name"`
}

type wireProduct struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	Price       *Price `json:"price"`
	BasePrice   *Price `json:"base_price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
}

// DecodeCities unwraps any of the accepted city payload shapes into a flat list.
// Region-keyed maps are flattened in sorted key order.
func DecodeCities(data []byte) ([]City, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if data[0] == '[' {
		return decodeCityList(data, "")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}
	if inner, ok := obj["cities"]; ok {
		return DecodeCities(inner)
	}

	regions := make([]string, 0, len(obj))
	for k := range obj {
		regions = append(regions, k)
	}
	sort.Strings(regions)

	var out []City
	for _, region := range regions {
		raw := bytes.TrimSpace(obj[region])
		if len(raw) == 0 || raw[0] != '[' {
			// scalar siblings such as "success": true
			continue
		}
		cities, err := decodeCityList(raw, region)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", region, err)
		}
		out = append(out, cities...)
	}
	return out, nil
}

func decodeCityList(data []byte, region string) ([]City, error) {
	var wire []wireCity
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode city list: %w", err)
	}
	out := make([]City, 0, len(wire))
	for _, w := range wire {
		c := City{ID: int64(w.ID), Name: strings.TrimSpace(w.Name), Region: strings.TrimSpace(w.Region)}
		if c.Region == "" {
			c.Region = strings.TrimSpace(w.RegionName)
		}
		if c.Region == "" {
			c.Region = region
		}
		out = append(out, c)
	}
	return out, nil
}

// DecodeProducts accepts `[...]` or `{"products": [...]}`.
func DecodeProducts(data []byte, policy *bluemonday.Policy) ([]Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if data[0] == '{' {
		var envelope struct {
			Products json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		if len(envelope.Products) == 0 {
			return nil, fmt.Errorf("decode products: missing products key")
		}
		data = envelope.Products
	}
	var wire []wireProduct
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	out := make([]Product, 0, len(wire))
	for _, w := range wire {
		p := Product{
			ID:          int64(w.ID),
			Name:        strings.TrimSpace(w.Name),
			Description: sanitizeText(policy, w.Description),
			ImageURL:    strings.TrimSpace(w.ImageURL),
			Category:    strings.TrimSpace(w.Category),
		}
		switch {
		case w.Price != nil && *w.Price != "":
			p.Price = *w.Price
		case w.BasePrice != nil:
			p.Price = *w.BasePrice
		}
		out = append(out, p)
	}
	return out, nil
}

// sanitizeText strips markup and returns plain text with whitespace collapsed.
// The policy escapes entities, so they are decoded again; escaping for output
// happens once, in the shell mutator.
func sanitizeText(policy *bluemonday.Policy, s string) string {
	if s == "" {
		return ""
	}
	clean := html.UnescapeString(policy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}
