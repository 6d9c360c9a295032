package collections

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the loaded definitions.
type Handler struct {
	file *File
	now  func() time.Time
}

// NewHandler creates a new HTTP handler.
func NewHandler(file *File) *Handler {
	return &Handler{file: file, now: time.Now}
}

// RegisterRoutes registers the collection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/collections")
	group.Get("/", h.HandleList)
	group.Get("/:library", h.HandleGetLibrary)
}

// CollectionView is a collection as listed by the API.
type CollectionView struct {
	Collection
	MediaType string `json:"media_type"`
	DueToday  bool   `json:"due_today"`
}

// LibraryView is a library as listed by the API.
type LibraryView struct {
	Name        string           `json:"name"`
	MediaType   string           `json:"media_type"`
	Collections []CollectionView `json:"collections"`
}

// HandleList returns every library with its collections.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	views := make([]LibraryView, 0, len(h.file.Libraries))
	for _, l := range h.file.Libraries {
		views = append(views, h.view(l))
	}
	return c.JSON(fiber.Map{"libraries": views})
}

// HandleGetLibrary returns one library.
func (h *Handler) HandleGetLibrary(c *fiber.Ctx) error {
	l, ok := h.file.Library(c.Params("library"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "library not found",
		})
	}
	return c.JSON(h.view(l))
}

func (h *Handler) view(l Library) LibraryView {
	now := h.now()
	mediaType := string(l.ResolvedMediaType())
	v := LibraryView{Name: l.Name, MediaType: mediaType, Collections: make([]CollectionView, 0, len(l.Collections))}
	for _, c := range l.Collections {
		sched, err := ParseSchedule(c.Schedule)
		v.Collections = append(v.Collections, CollectionView{
			Collection: c,
			MediaType:  mediaType,
			DueToday:   err != nil || sched.DueOn(now),
		})
	}
	return v
}
