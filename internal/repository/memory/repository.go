package memory

import (
	"sync"

	"github.com/omarshaarawi/hoopscores/internal/models"
)

// Repository holds the most recently rendered view so late-joining clients
// can draw the board without waiting for the next render.
type Repository struct {
	view *models.View
	mu   sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveView(view models.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = &view
}

// GetView returns a copy of the stored view and false when nothing has been
// rendered yet.
func (r *Repository) GetView() (models.View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.view == nil {
		return models.View{}, false
	}
	return *r.view, true
}
