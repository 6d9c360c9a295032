package collections

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	file    *File
	handler *Handler
}

// NewFeature creates a new Collections feature.
func NewFeature(file *File) *Feature {
	return &Feature{file: file, handler: NewHandler(file)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "collections"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.file != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
