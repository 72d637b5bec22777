package form

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/jwebster45206/location-creator/internal/images"
	"github.com/jwebster45206/location-creator/internal/storage"
	"github.com/jwebster45206/location-creator/pkg/location"
)

// ErrNoSelection is returned by operations that need a displayed record while
// the form is idle.
var ErrNoSelection = errors.New("no location selected")

// State is the form's position in its two-state lifecycle.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Fields mirrors the editable inputs of the form.
type Fields struct {
	Image                string
	Terrain              string
	Description          string
	ShortDescription     string
	MonsterChance        string
	RandomTreasureChance string
	DungeonChance        string
	Connections          location.Connections
}

func fieldsFromRecord(rec location.Record) Fields {
	return Fields{
		Image:                rec.Image,
		Terrain:              rec.Terrain,
		Description:          rec.Description,
		ShortDescription:     rec.ShortDescription,
		MonsterChance:        rec.MonsterChance,
		RandomTreasureChance: rec.RandomTreasureChance,
		DungeonChance:        rec.DungeonChance,
		Connections:          rec.Connections,
	}
}

// Controller binds the currently displayed record to the form fields and
// flushes edits back to the store before the displayed record changes.
type Controller struct {
	store  *location.Store
	images *images.Library
	logger *slog.Logger

	current string
	state   State
	fields  Fields

	// shown is what each selector displayed when the record was loaded,
	// stored is what the record held. They differ when a stored link dangles.
	shown   location.Connections
	stored  location.Connections
	touched [len(location.Directions)]bool

	preview    image.Image
	previewErr error
}

// New creates a controller in the Idle state.
func New(store *location.Store, lib *images.Library, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		images: lib,
		logger: logger,
	}
}

// State returns Idle or Editing.
func (c *Controller) State() State {
	return c.state
}

// Current returns the displayed id, if any.
func (c *Controller) Current() (string, bool) {
	return c.current, c.state == Editing
}

// Fields returns the current form contents.
func (c *Controller) Fields() Fields {
	return c.fields
}

// SetFields replaces the form contents with what the user typed. Selectors
// whose value differs from what was displayed count as edited.
func (c *Controller) SetFields(f Fields) {
	for i, d := range location.Directions {
		if f.Connections.Get(d) != c.shown.Get(d) {
			c.touched[i] = true
		}
	}
	c.fields = f
}

// SetConnection changes one selector.
func (c *Controller) SetConnection(d location.Direction, id string) {
	for i, dir := range location.Directions {
		if dir == d {
			c.touched[i] = true
		}
	}
	c.fields.Connections.Set(d, id)
}

// NeighborOptions lists the values every selector can take.
func (c *Controller) NeighborOptions() []string {
	return c.store.NeighborOptions()
}

// IDs lists every location in display order.
func (c *Controller) IDs() []string {
	return c.store.IDs()
}

// Record returns the stored copy of any location, displayed or not.
func (c *Controller) Record(id string) (location.Record, error) {
	return c.store.Get(id)
}

// Dangling reports connections that point at removed ids.
func (c *Controller) Dangling() []location.DanglingRef {
	return c.store.Dangling()
}

// New creates an empty location and returns its id. The selection is unchanged.
func (c *Controller) New() string {
	id := c.store.Create()
	c.logger.Info("Location added", "id", id)
	return id
}

// Select flushes the displayed record, then displays id. An unknown id
// changes nothing.
func (c *Controller) Select(id string) error {
	rec, err := c.store.Get(id)
	if err != nil {
		c.logger.Debug("Ignoring selection of unknown location", "id", id)
		return err
	}

	if c.state == Editing {
		if err := c.FlushCurrent(); err != nil {
			c.logger.Warn("Failed to save location before switching", "id", c.current, "error", err)
		}
	}

	c.display(rec)
	c.logger.Debug("Location selected", "id", id)
	return nil
}

func (c *Controller) display(rec location.Record) {
	c.current = rec.ID
	c.state = Editing
	c.fields = fieldsFromRecord(rec)

	valid := make(map[string]bool)
	for _, opt := range c.store.NeighborOptions() {
		valid[opt] = true
	}
	for _, d := range location.Directions {
		if !valid[rec.Connections.Get(d)] {
			c.fields.Connections.Set(d, "")
		}
	}

	c.shown = c.fields.Connections
	c.stored = rec.Connections
	c.touched = [len(location.Directions)]bool{}
	c.refreshPreview()
}

// FlushCurrent writes the form fields into the displayed record. Chances are
// coerced into [0,100]. A selector the user never touched keeps the stored
// value, so links to deleted locations survive a save.
func (c *Controller) FlushCurrent() error {
	if c.state != Editing {
		c.logger.Warn("No location selected, nothing to save")
		return ErrNoSelection
	}

	f := c.fields
	conns := f.Connections
	for i, d := range location.Directions {
		if !c.touched[i] {
			conns.Set(d, c.stored.Get(d))
		}
	}

	err := c.store.Update(c.current, func(rec *location.Record) {
		rec.Image = f.Image
		rec.Terrain = f.Terrain
		rec.Description = f.Description
		rec.ShortDescription = f.ShortDescription
		rec.MonsterChance = location.CoerceChance(f.MonsterChance)
		rec.RandomTreasureChance = location.CoerceChance(f.RandomTreasureChance)
		rec.DungeonChance = location.CoerceChance(f.DungeonChance)
		rec.Connections = conns
	})
	if err != nil {
		c.logger.Warn("Failed to save location", "id", c.current, "error", err)
		return err
	}

	c.fields.MonsterChance = location.CoerceChance(f.MonsterChance)
	c.fields.RandomTreasureChance = location.CoerceChance(f.RandomTreasureChance)
	c.fields.DungeonChance = location.CoerceChance(f.DungeonChance)
	c.stored = conns
	c.logger.Debug("Location saved", "id", c.current)
	return nil
}

// CurrentRecord returns the stored copy of the displayed record.
func (c *Controller) CurrentRecord() (location.Record, error) {
	if c.state != Editing {
		return location.Record{}, ErrNoSelection
	}
	return c.store.Get(c.current)
}

// DeleteCurrent removes the displayed record and returns to Idle.
func (c *Controller) DeleteCurrent() error {
	if c.state != Editing {
		c.logger.Warn("No location selected, nothing to delete")
		return ErrNoSelection
	}

	id := c.current
	c.store.Delete(id)
	c.clear()
	c.logger.Info("Location deleted", "id", id)
	return nil
}

func (c *Controller) clear() {
	c.current = ""
	c.state = Idle
	c.fields = Fields{}
	c.shown = location.Connections{}
	c.stored = location.Connections{}
	c.touched = [len(location.Directions)]bool{}
	c.preview = nil
	c.previewErr = nil
}

// SetImage imports sourcePath into the image library, points the displayed
// record's image field at the copy and refreshes the preview. A preview
// failure is reported but the path is kept.
func (c *Controller) SetImage(sourcePath string) error {
	if c.state != Editing {
		return ErrNoSelection
	}

	rel, err := c.images.Import(sourcePath)
	if err != nil {
		c.logger.Warn("Failed to import image", "source", sourcePath, "error", err)
		return err
	}

	c.fields.Image = rel
	c.refreshPreview()
	return c.previewErr
}

// RefreshPreview reloads the preview from the image field.
func (c *Controller) RefreshPreview() error {
	c.refreshPreview()
	return c.previewErr
}

func (c *Controller) refreshPreview() {
	c.preview, c.previewErr = nil, nil
	if c.fields.Image == "" {
		return
	}
	img, err := c.images.Preview(c.fields.Image)
	if err != nil {
		c.logger.Warn("Image preview unavailable", "path", c.fields.Image, "error", err)
		c.previewErr = err
		return
	}
	c.preview = img
}

// Preview returns the scaled preview of the current image and the error from
// the last refresh, if any.
func (c *Controller) Preview() (image.Image, error) {
	return c.preview, c.previewErr
}

// SaveAll flushes the displayed record and writes the whole store.
func (c *Controller) SaveAll(ctx context.Context, st storage.Storage) error {
	if c.state == Editing {
		if err := c.FlushCurrent(); err != nil {
			c.logger.Warn("Failed to save current location", "id", c.current, "error", err)
		}
	}

	data, err := c.store.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize locations: %w", err)
	}
	if err := st.SaveLocations(ctx, data); err != nil {
		return err
	}

	c.logger.Info("Locations saved", "count", c.store.Len(), "target", st.Describe())
	return nil
}

// LoadAll replaces the store with the saved document. On any failure the
// store keeps its previous contents and the error is returned as a diagnostic.
func (c *Controller) LoadAll(ctx context.Context, st storage.Storage) error {
	data, err := st.LoadLocations(ctx)
	if err != nil {
		c.logger.Warn("Could not load locations", "source", st.Describe(), "error", err)
		return err
	}
	if err := c.store.Load(data); err != nil {
		c.logger.Warn("Could not parse locations", "source", st.Describe(), "error", err)
		return err
	}

	if c.state == Editing {
		rec, err := c.store.Get(c.current)
		if err != nil {
			c.clear()
		} else {
			c.display(rec)
		}
	}

	c.logger.Info("Locations loaded", "count", c.store.Len(), "source", st.Describe())
	return nil
}
