package blocks

import (
	"errors"
	"fmt"
	"strings"

	"pagecraft/internal/domain/models"

	"github.com/google/uuid"
)

var (
	ErrIndexOutOfRange = errors.New("block index out of range")
	ErrItemOutOfRange  = errors.New("item index out of range")
	ErrFieldNotArray   = errors.New("content field is not an item list")
	ErrItemNotObject   = errors.New("list item is not an object")
	ErrUnknownField    = errors.New("unknown block field")
	ErrNilTemplate     = errors.New("template is not resolved")
)

// Collection maintains the ordered block list of one page document.
// Mutations run under a single-writer model and every structural change
// renormalizes order indices, keeping blocks[i].OrderIndex == i.
type Collection struct {
	blocks models.BlockList
}

// New adopts an existing block list. Indices are renormalized on adoption
// so a document coming from storage or from a client always satisfies the
// order invariant before any operation runs, and blocks arriving without
// a key get one minted so each keeps a distinct, stable identity.
func New(list models.BlockList) *Collection {
	c := &Collection{blocks: list}
	c.renormalize()
	return c
}

// Blocks exposes the underlying list. Callers must not reorder it directly.
func (c *Collection) Blocks() models.BlockList {
	return c.blocks
}

func (c *Collection) Len() int {
	return len(c.blocks)
}

// Add appends a new empty block of the given type. Unsupported type tags
// are accepted: the block simply has no default field schema.
func (c *Collection) Add(t models.BlockType) *models.ContentBlock {
	block := models.ContentBlock{
		Key:        uuid.New(),
		Type:       t,
		Title:      DefaultTitle(t),
		Content:    models.BlockContent{},
		OrderIndex: len(c.blocks),
		IsExpanded: true,
	}
	c.blocks = append(c.blocks, block)
	return &c.blocks[len(c.blocks)-1]
}

// AddFromTemplate appends a block seeded from a template: the template's
// type, its name as title and a shallow copy of its content. A nil
// template cannot be instantiated.
func (c *Collection) AddFromTemplate(tpl *models.BlockTemplate) (*models.ContentBlock, error) {
	if tpl == nil {
		return nil, ErrNilTemplate
	}
	content := models.BlockContent{}
	for k, v := range tpl.Content {
		content[k] = v
	}
	templateID := tpl.ID
	block := models.ContentBlock{
		Key:        uuid.New(),
		Type:       tpl.Type,
		Title:      tpl.Name,
		Content:    content,
		OrderIndex: len(c.blocks),
		TemplateID: &templateID,
		IsExpanded: true,
	}
	c.blocks = append(c.blocks, block)
	return &c.blocks[len(c.blocks)-1], nil
}

// Remove deletes the block at index and returns every MediaReference the
// block held, so the caller can release the stored files best-effort.
func (c *Collection) Remove(index int) ([]models.MediaReference, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	refs := CollectRefs(c.blocks[index].Content)
	c.blocks = append(c.blocks[:index], c.blocks[index+1:]...)
	c.renormalize()
	return refs, nil
}

// Reorder moves the block at from to position to. An out-of-range drop
// target means the block was dropped outside a valid zone: the move is a
// no-op. The source index must address an existing block.
func (c *Collection) Reorder(from, to int) error {
	if err := c.checkIndex(from); err != nil {
		return err
	}
	if to < 0 || to >= len(c.blocks) {
		return nil
	}
	if from == to {
		return nil
	}
	block := c.blocks[from]
	c.blocks = append(c.blocks[:from], c.blocks[from+1:]...)
	c.blocks = append(c.blocks[:to], append(models.BlockList{block}, c.blocks[to:]...)...)
	c.renormalize()
	return nil
}

// SetField replaces a top-level block field. Structural fields (key,
// orderIndex) are not addressable through it.
func (c *Collection) SetField(index int, field string, value any) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	switch field {
	case "title":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: title must be a string", ErrUnknownField)
		}
		c.blocks[index].Title = s
	case "type":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: type must be a string", ErrUnknownField)
		}
		c.blocks[index].Type = models.BlockType(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetContentField shallow-merges one field into the block's content,
// creating the content object if absent. Sibling fields are preserved.
func (c *Collection) SetContentField(index int, field string, value any) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	if c.blocks[index].Content == nil {
		c.blocks[index].Content = models.BlockContent{}
	}
	c.blocks[index].Content[field] = value
	return nil
}

// ToggleExpanded flips the view-only expansion flag.
func (c *Collection) ToggleExpanded(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.blocks[index].IsExpanded = !c.blocks[index].IsExpanded
	return nil
}

// AddItem appends an item to a nested list field, creating the list if
// absent.
func (c *Collection) AddItem(index int, arrayField string, item map[string]any) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	items, err := c.itemList(index, arrayField)
	if err != nil {
		return err
	}
	if item == nil {
		item = map[string]any{}
	}
	c.blocks[index].Content[arrayField] = append(items, item)
	return nil
}

// RemoveItem deletes the item at itemIndex and reports the
// MediaReference it held, if any, for best-effort file cleanup.
func (c *Collection) RemoveItem(index int, arrayField string, itemIndex int) ([]models.MediaReference, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	items, err := c.itemList(index, arrayField)
	if err != nil {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(items) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrItemOutOfRange, arrayField, itemIndex)
	}
	var refs []models.MediaReference
	if m, ok := items[itemIndex].(map[string]any); ok {
		refs = CollectRefs(m)
	}
	c.blocks[index].Content[arrayField] = append(items[:itemIndex], items[itemIndex+1:]...)
	return refs, nil
}

// SetItemField merges one field into the item at itemIndex. A sparse
// index grows the list with empty items up to and including itemIndex.
func (c *Collection) SetItemField(index int, arrayField string, itemIndex int, itemField string, value any) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	items, err := c.itemList(index, arrayField)
	if err != nil {
		return err
	}
	if itemIndex < 0 {
		return fmt.Errorf("%w: %s[%d]", ErrItemOutOfRange, arrayField, itemIndex)
	}
	for len(items) <= itemIndex {
		items = append(items, map[string]any{})
	}
	item, ok := items[itemIndex].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s[%d]", ErrItemNotObject, arrayField, itemIndex)
	}
	item[itemField] = value
	items[itemIndex] = item
	c.blocks[index].Content[arrayField] = items
	return nil
}

func (c *Collection) checkIndex(index int) error {
	if index < 0 || index >= len(c.blocks) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(c.blocks))
	}
	return nil
}

// itemList returns the nested list as []any, creating it when absent.
// A JSON round-trip leaves lists as []any, in-memory mutations keep the
// same shape.
func (c *Collection) itemList(index int, arrayField string) ([]any, error) {
	if c.blocks[index].Content == nil {
		c.blocks[index].Content = models.BlockContent{}
	}
	raw, ok := c.blocks[index].Content[arrayField]
	if !ok || raw == nil {
		return []any{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotArray, arrayField)
	}
	return items, nil
}

func (c *Collection) renormalize() {
	for i := range c.blocks {
		c.blocks[i].OrderIndex = i
		if c.blocks[i].Key == uuid.Nil {
			c.blocks[i].Key = uuid.New()
		}
	}
}

// DefaultTitle derives the title a freshly added block starts with.
func DefaultTitle(t models.BlockType) string {
	name := string(t)
	if name == "" {
		return "New Block"
	}
	return "New " + strings.ToUpper(name[:1]) + name[1:] + " Block"
}
