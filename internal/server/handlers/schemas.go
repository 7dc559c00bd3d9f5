// Handles JSON Schema requests.

package handlers

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/signum-hq/signum/internal/project"
	"github.com/signum-hq/signum/internal/server/dto"
)

// SchemaHandler serves the JSON Schemas of the submission types.
type SchemaHandler struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaHandler creates a new schema handler. Schemas are generated once.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{schemas: project.Schemas()}
}

// GetSchema returns a schema by name.
func (h *SchemaHandler) GetSchema(ctx context.Context, req *dto.GetSchemaRequest) (*jsonschema.Schema, error) {
	s, ok := h.schemas[req.Name]
	if !ok {
		return nil, dto.NotFound("schema " + req.Name)
	}
	return s, nil
}
