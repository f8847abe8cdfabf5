package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"pagecraft/internal/blocks"
	"pagecraft/internal/domain/models"
	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/notifier"

	"github.com/google/uuid"
)

var ErrUploadInFlight = errors.New("upload already in flight for this field")

// UploadInput carries one file into the media store.
type UploadInput struct {
	UploaderID   uuid.UUID
	Filename     string
	MimeType     string
	Reader       io.Reader
	Size         int64
	AddToLibrary bool
	SetAsInUse   bool
}

// MediaStore is the persistence side of an upload: save the file and hand
// back its public reference, or release it again by id.
type MediaStore interface {
	UploadFile(ctx context.Context, in UploadInput) (models.MediaReference, error)
	DeleteFile(ctx context.Context, id string) error
}

// State is the per-field upload indicator an editor polls while a file is
// being transferred.
type State struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Target addresses the content slot the uploaded reference lands in. With
// ItemField set, Field names a list and the reference goes into
// items[Item].ItemField instead of the field itself.
type Target struct {
	Block     int
	Field     string
	Item      int
	ItemField string
}

func (t Target) key() string {
	if t.ItemField == "" {
		return fmt.Sprintf("%d.%s", t.Block, t.Field)
	}
	return fmt.Sprintf("%d.%s.%d.%s", t.Block, t.Field, t.Item, t.ItemField)
}

// Coordinator runs uploads field by field. Each field carries its own
// state so one failed image never blocks the rest of the form, and a
// scope with any loading field refuses a document save.
type Coordinator struct {
	store  MediaStore
	notify notifier.Notifier
	log    *slog.Logger

	mu     sync.Mutex
	states map[string]map[string]State
}

func New(store MediaStore, notify notifier.Notifier, log *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		notify: notify,
		log:    log,
		states: make(map[string]map[string]State),
	}
}

// Track runs the stored-file upload under the field's in-flight state
// without touching any document, for uploads that land in a draft the
// client still holds. The loading state is visible before any I/O starts
// and a failure is kept in the field state until the next attempt.
func (c *Coordinator) Track(ctx context.Context, scope, key string, in UploadInput) (models.MediaReference, error) {
	const op = "uploader.Coordinator.Track"

	c.mu.Lock()
	if c.states[scope][key].Loading {
		c.mu.Unlock()
		return models.MediaReference{}, fmt.Errorf("%s: %w", op, ErrUploadInFlight)
	}
	c.setState(scope, key, State{Loading: true})
	c.mu.Unlock()

	ref, err := c.store.UploadFile(ctx, in)
	if err != nil {
		c.mu.Lock()
		c.setState(scope, key, State{Error: err.Error()})
		c.mu.Unlock()

		c.log.Error("file upload failed",
			slog.String("scope", scope),
			slog.String("field", key),
			sl.Err(err),
		)
		c.notify.Error("Failed to upload file: " + in.Filename)
		return models.MediaReference{}, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.clearState(scope, key)
	c.mu.Unlock()

	return ref, nil
}

// Upload stores the file and writes its reference into the target slot of
// col. On failure the collection is left untouched.
func (c *Coordinator) Upload(ctx context.Context, scope string, col *blocks.Collection, target Target, in UploadInput) (models.MediaReference, error) {
	const op = "uploader.Coordinator.Upload"

	key := target.key()

	ref, err := c.Track(ctx, scope, key, in)
	if err != nil {
		return models.MediaReference{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := writeRef(col, target, ref); err != nil {
		// The file is stored but the slot is gone, release it again.
		if delErr := c.store.DeleteFile(ctx, ref.ID.String()); delErr != nil {
			c.log.Warn("orphaned upload not released", slog.String("id", ref.ID.String()), sl.Err(delErr))
		}
		c.mu.Lock()
		c.setState(scope, key, State{Error: err.Error()})
		c.mu.Unlock()
		return models.MediaReference{}, fmt.Errorf("%s: %w", op, err)
	}

	return ref, nil
}

// Remove nulls the target slot and releases the referenced file. The
// remote delete is best-effort: a storage failure downgrades to a warning
// and the slot is cleared regardless.
func (c *Coordinator) Remove(ctx context.Context, scope string, col *blocks.Collection, target Target) error {
	const op = "uploader.Coordinator.Remove"

	refs, err := readRef(col, target)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := writeRef(col, target, models.MediaReference{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, ref := range refs {
		if err := c.store.DeleteFile(ctx, ref.ID.String()); err != nil {
			c.log.Warn("file delete failed",
				slog.String("scope", scope),
				slog.String("id", ref.ID.String()),
				sl.Err(err),
			)
			c.notify.Warn("File removed from the page but not from storage")
		}
	}

	c.mu.Lock()
	c.clearState(scope, target.key())
	c.mu.Unlock()

	return nil
}

// State reports the current indicator for one field.
func (c *Coordinator) State(scope string, target Target) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[scope][target.key()]
}

// States snapshots every non-idle field of the scope.
func (c *Coordinator) States(scope string) map[string]State {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]State, len(c.states[scope]))
	for k, v := range c.states[scope] {
		out[k] = v
	}
	return out
}

// InFlight reports whether any field of the scope is still loading. A
// document save is refused while this holds.
func (c *Coordinator) InFlight(scope string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.states[scope] {
		if st.Loading {
			return true
		}
	}
	return false
}

// Release drops every state of the scope, for editor session teardown.
func (c *Coordinator) Release(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, scope)
}

// setState and clearState assume c.mu is held.
func (c *Coordinator) setState(scope, key string, st State) {
	if c.states[scope] == nil {
		c.states[scope] = make(map[string]State)
	}
	c.states[scope][key] = st
}

func (c *Coordinator) clearState(scope, key string) {
	delete(c.states[scope], key)
	if len(c.states[scope]) == 0 {
		delete(c.states, scope)
	}
}

func writeRef(col *blocks.Collection, target Target, ref models.MediaReference) error {
	var value any
	if !ref.IsZero() {
		value = ref.ContentValue()
	}
	if target.ItemField == "" {
		return col.SetContentField(target.Block, target.Field, value)
	}
	return col.SetItemField(target.Block, target.Field, target.Item, target.ItemField, value)
}

func readRef(col *blocks.Collection, target Target) ([]models.MediaReference, error) {
	list := col.Blocks()
	if target.Block < 0 || target.Block >= len(list) {
		return nil, blocks.ErrIndexOutOfRange
	}
	content := list[target.Block].Content
	if content == nil {
		return nil, nil
	}

	value, ok := content[target.Field]
	if !ok {
		return nil, nil
	}
	if target.ItemField != "" {
		items, isList := value.([]any)
		if !isList || target.Item < 0 || target.Item >= len(items) {
			return nil, nil
		}
		item, isObj := items[target.Item].(map[string]any)
		if !isObj {
			return nil, nil
		}
		value = item[target.ItemField]
	}

	if ref, ok := models.MediaRefFromValue(value); ok {
		return []models.MediaReference{ref}, nil
	}
	return nil, nil
}
