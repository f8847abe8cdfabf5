package blocks

import "pagecraft/internal/domain/models"

// CollectRefs walks a content payload and returns every MediaReference
// found, at any nesting depth. Used for cleanup when blocks or items
// holding uploaded files are removed.
func CollectRefs(content map[string]any) []models.MediaReference {
	var refs []models.MediaReference
	collectValue(content, &refs)
	return refs
}

// CollectDocumentRefs gathers the references of a whole block list.
func CollectDocumentRefs(list models.BlockList) []models.MediaReference {
	var refs []models.MediaReference
	for _, b := range list {
		collectValue(map[string]any(b.Content), &refs)
	}
	return refs
}

// DiffRemovedRefs reports references present in old but gone from new,
// compared by storage id. The caller releases the matching stored files
// best-effort after a successful save.
func DiffRemovedRefs(old, new models.BlockList) []models.MediaReference {
	kept := make(map[string]struct{})
	for _, ref := range CollectDocumentRefs(new) {
		kept[ref.ID.String()] = struct{}{}
	}
	var removed []models.MediaReference
	seen := make(map[string]struct{})
	for _, ref := range CollectDocumentRefs(old) {
		id := ref.ID.String()
		if _, ok := kept[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		removed = append(removed, ref)
	}
	return removed
}

func collectValue(v any, out *[]models.MediaReference) {
	if ref, ok := models.MediaRefFromValue(v); ok {
		*out = append(*out, ref)
		return
	}
	switch val := v.(type) {
	case map[string]any:
		for _, nested := range val {
			collectValue(nested, out)
		}
	case models.BlockContent:
		for _, nested := range val {
			collectValue(nested, out)
		}
	case []any:
		for _, nested := range val {
			collectValue(nested, out)
		}
	}
}
