package imagery

import (
	"fmt"
	"strings"
)

const visualAsset = "visual"

// DeriveImagePackage builds the four renderer URLs for a signed scene. It is a pure function of its inputs.
func DeriveImagePackage(scene Scene, bbox BBox, rendererURL string) (ImagePackage, error) {
	token, err := sharedToken(scene)
	if err != nil {
		return ImagePackage{}, err
	}

	base := strings.TrimRight(rendererURL, "/") + "/item/bbox/" + bbox.String() + ".png"
	build := func(params func(q *queryBuilder)) string {
		q := newQueryBuilder().
			Add("collection", scene.Collection).
			Add("item", scene.ID)
		params(q)
		q.Raw(token)
		return base + "?" + q.Encode()
	}

	images := Images{
		Visual: build(func(q *queryBuilder) {
			q.Add("assets", visualAsset).
				Add("rescale", "0,3000")
		}),
		FalseColor: build(func(q *queryBuilder) {
			q.Add("assets", "B08").
				Add("assets", "B04").
				Add("assets", "B03").
				Add("rescale", "0,5000").
				Add("asset_as_band", "True")
		}),
		WaterMask: build(func(q *queryBuilder) {
			q.Add("expression", normalizedDifference("B03", "B08")).
				Add("asset_as_band", "True").
				Add("rescale", "0,1").
				Add("colormap_name", "blues")
		}),
		NDCI: build(func(q *queryBuilder) {
			q.Add("expression", normalizedDifference("B05", "B04")).
				Add("asset_as_band", "True").
				Add("rescale", "-1,1").
				Add("colormap_name", "greens")
		}),
	}

	return ImagePackage{
		Images: images,
		Metadata: Metadata{
			ItemID:     scene.ID,
			Collection: scene.Collection,
			Datetime:   scene.Datetime,
			CloudCover: scene.CloudCover,
			BBox:       bbox.Slice(),
		},
	}, nil
}

// sharedToken is everything after the first '?' of the signed visual href.
func sharedToken(scene Scene) (string, error) {
	asset, ok := scene.Assets[visualAsset]
	if !ok {
		return "", fmt.Errorf("scene %s has no %q asset", scene.ID, visualAsset)
	}
	_, token, found := strings.Cut(asset.Href, "?")
	if !found || token == "" {
		return "", fmt.Errorf("scene %s %q asset href is not signed", scene.ID, visualAsset)
	}
	return token, nil
}

func normalizedDifference(a, b string) string {
	return "(" + a + "-" + b + ")/(" + a + "+" + b + ")"
}

// queryBuilder keeps parameters in insertion order, including repeated keys.
type queryBuilder struct {
	parts []string
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

// Add appends key=value with both sides escaped.
func (q *queryBuilder) Add(key, value string) *queryBuilder {
	q.parts = append(q.parts, escapeQuery(key)+"="+escapeQuery(value))
	return q
}

// Raw appends an already encoded fragment such as a SAS token.
func (q *queryBuilder) Raw(fragment string) *queryBuilder {
	if fragment != "" {
		q.parts = append(q.parts, fragment)
	}
	return q
}

// Encode joins the parameters in insertion order.
func (q *queryBuilder) Encode() string {
	return strings.Join(q.parts, "&")
}

const upperhex = "0123456789ABCDEF"

func escapeQuery(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepLiteral(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// keepLiteral allows RFC 3986 unreserved characters plus the punctuation used by renderer expressions and ranges.
func keepLiteral(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '(', ')', ',', '/', ':', '*':
		return true
	}
	return false
}
