// Package workspace holds the surfaces, layers and drawings produced by
// geometry jobs. It replaces process-wide registries with a value that is
// passed explicitly to whoever needs it.
package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/terracore/pkg/entity"
	"github.com/Faultbox/terracore/pkg/geom"
)

// ErrNotFound is returned for unknown surface or layer IDs.
var ErrNotFound = errors.New("not found")

// Layer groups drawing entities.
type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Workspace is safe for concurrent use. Surfaces are copied on the way in
// and out so callers never share triangle slices with it.
type Workspace struct {
	mu sync.RWMutex

	surfaces     map[string]*geom.Surface
	surfaceOrder []string

	layers     map[string]*Layer
	layerOrder []string
	drawings   map[string][]entity.Entity
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		surfaces: make(map[string]*geom.Surface),
		layers:   make(map[string]*Layer),
		drawings: make(map[string][]entity.Entity),
	}
}

// AddSurface stores a copy of s and returns its ID. A surface without an
// ID gets a fresh one; an existing ID is replaced in place.
func (w *Workspace) AddSurface(s *geom.Surface) string {
	c := s.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.surfaces[c.ID]; !ok {
		w.surfaceOrder = append(w.surfaceOrder, c.ID)
	}
	w.surfaces[c.ID] = c
	return c.ID
}

// Surface returns a copy of the surface with the given ID.
func (w *Workspace) Surface(id string) (*geom.Surface, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("surface %s: %w", id, ErrNotFound)
	}
	return s.Clone(), nil
}

// Surfaces returns copies of every surface in insertion order.
func (w *Workspace) Surfaces() []*geom.Surface {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*geom.Surface, 0, len(w.surfaceOrder))
	for _, id := range w.surfaceOrder {
		out = append(out, w.surfaces[id].Clone())
	}
	return out
}

// SetVisible toggles a surface's visibility flag.
func (w *Workspace) SetVisible(id string, visible bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.surfaces[id]
	if !ok {
		return fmt.Errorf("surface %s: %w", id, ErrNotFound)
	}
	s.Visible = visible
	return nil
}

// RemoveSurface deletes a surface and reports whether it existed.
func (w *Workspace) RemoveSurface(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.surfaces[id]; !ok {
		return false
	}
	delete(w.surfaces, id)
	w.surfaceOrder = remove(w.surfaceOrder, id)
	return true
}

// AddLayer creates a visible layer.
func (w *Workspace) AddLayer(name string) Layer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.addLayer(name)
}

func (w *Workspace) addLayer(name string) *Layer {
	l := &Layer{ID: uuid.NewString(), Name: name, Visible: true}
	w.layers[l.ID] = l
	w.layerOrder = append(w.layerOrder, l.ID)
	return l
}

// EnsureLayer returns the first layer called name, creating it if needed.
func (w *Workspace) EnsureLayer(name string) Layer {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range w.layerOrder {
		if l := w.layers[id]; l.Name == name {
			return *l
		}
	}
	return *w.addLayer(name)
}

// Layer returns the layer with the given ID.
func (w *Workspace) Layer(id string) (Layer, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	l, ok := w.layers[id]
	if !ok {
		return Layer{}, fmt.Errorf("layer %s: %w", id, ErrNotFound)
	}
	return *l, nil
}

// Layers returns every layer in creation order.
func (w *Workspace) Layers() []Layer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Layer, 0, len(w.layerOrder))
	for _, id := range w.layerOrder {
		out = append(out, *w.layers[id])
	}
	return out
}

// RemoveLayer deletes a layer together with its drawings.
func (w *Workspace) RemoveLayer(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.layers[id]; !ok {
		return false
	}
	delete(w.layers, id)
	delete(w.drawings, id)
	w.layerOrder = remove(w.layerOrder, id)
	return true
}

// AddEntities appends entities to a layer, re-homing them onto it.
func (w *Workspace) AddEntities(layerID string, es ...entity.Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.layers[layerID]; !ok {
		return fmt.Errorf("layer %s: %w", layerID, ErrNotFound)
	}
	for _, e := range es {
		h := e.Head()
		h.LayerID = layerID
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
	}
	w.drawings[layerID] = append(w.drawings[layerID], es...)
	return nil
}

// Entities returns the drawings on a layer.
func (w *Workspace) Entities(layerID string) []entity.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]entity.Entity(nil), w.drawings[layerID]...)
}

// Export returns the drawings of a layer as GeoJSON, or of every layer
// when layerID is empty.
func (w *Workspace) Export(layerID string) *geojson.FeatureCollection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if layerID != "" {
		return entity.FeatureCollection(w.drawings[layerID])
	}
	var all []entity.Entity
	for _, id := range w.layerOrder {
		all = append(all, w.drawings[id]...)
	}
	return entity.FeatureCollection(all)
}

// Records returns the drawings of a layer in their wire form, or of every
// layer when layerID is empty.
func (w *Workspace) Records(layerID string) []entity.Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := w.layerOrder
	if layerID != "" {
		ids = []string{layerID}
	}
	out := []entity.Record{}
	for _, id := range ids {
		for _, e := range w.drawings[id] {
			out = append(out, entity.ToRecord(e))
		}
	}
	return out
}

// Stats returns the number of surfaces, layers and entities.
func (w *Workspace) Stats() (surfaces, layers, entities int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, es := range w.drawings {
		entities += len(es)
	}
	return len(w.surfaces), len(w.layers), entities
}

// Clear drops everything.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surfaces = make(map[string]*geom.Surface)
	w.surfaceOrder = nil
	w.layers = make(map[string]*Layer)
	w.layerOrder = nil
	w.drawings = make(map[string][]entity.Entity)
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
