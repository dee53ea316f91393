package kroger

import "github.com/homeplate/backend/internal/domain"

// mapProduct converts a raw Kroger catalog product into the domain shape.
// Price and size come from the first item; Kroger lists one item per
// store-level product entry in practice.
func mapProduct(raw krogerProduct) domain.Product {
	p := domain.Product{
		ProductID:   raw.ProductID,
		Description: raw.Description,
		Brand:       raw.Brand,
		ImageURL:    frontImageURL(raw.Images),
	}

	if len(raw.Items) > 0 {
		item := raw.Items[0]
		p.Size = item.Size
		p.RegularPrice = item.Price.Regular
		if item.Price.Promo > 0 {
			promo := item.Price.Promo
			p.PromoPrice = &promo
		}
	}

	return p
}

// frontImageURL picks the medium front-perspective image, falling back to
// whatever image is listed first.
func frontImageURL(images []krogerImage) string {
	var fallback string
	for _, img := range images {
		for _, size := range img.Sizes {
			if fallback == "" {
				fallback = size.URL
			}
			if img.Perspective == "front" && size.Size == "medium" {
				return size.URL
			}
		}
	}
	return fallback
}
