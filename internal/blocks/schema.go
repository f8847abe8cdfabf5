package blocks

import "pagecraft/internal/domain/models"

// TypeInfo describes one block kind available in the builder UI.
type TypeInfo struct {
	Type       models.BlockType `json:"type"`
	Name       string           `json:"name"`
	ListFields []string         `json:"list_fields,omitempty"`
}

// builderTypes is the fixed set of supported block kinds. Unknown type
// tags are still accepted by the collection; they just have no item-list
// schema and the editor degrades to a raw field view.
var builderTypes = []TypeInfo{
	{Type: models.BlockHero, Name: "Hero"},
	{Type: models.BlockFeatures, Name: "Features", ListFields: []string{"features"}},
	{Type: models.BlockCTA, Name: "Call to action"},
	{Type: models.BlockContentText, Name: "Content", ListFields: []string{"listItems"}},
	{Type: models.BlockFAQ, Name: "FAQ", ListFields: []string{"faqs"}},
	{Type: models.BlockSlider, Name: "Slider", ListFields: []string{"slides"}},
	{Type: models.BlockTestimonials, Name: "Testimonials", ListFields: []string{"testimonials"}},
	{Type: models.BlockProducts, Name: "Products", ListFields: []string{"products"}},
	{Type: models.BlockTextImage, Name: "Text and image"},
	{Type: models.BlockAbout, Name: "About"},
	{Type: models.BlockVideo, Name: "Video"},
}

// BuilderTypes lists the supported block kinds for the editor.
func BuilderTypes() []TypeInfo {
	out := make([]TypeInfo, len(builderTypes))
	copy(out, builderTypes)
	return out
}

// IsKnownType reports whether t belongs to the fixed block-kind set.
func IsKnownType(t models.BlockType) bool {
	for _, info := range builderTypes {
		if info.Type == t {
			return true
		}
	}
	return false
}
