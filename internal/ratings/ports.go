package ratings

import (
	"context"

	"satisfaction/internal/core"
)

// Ports for inbound data sources.
type (
	// Source reads the raw rating rows from wherever they are stored.
	// Rows are returned in source order; coercion happens in core.Transform.
	Source interface {
		Load(ctx context.Context) ([]core.RawRecord, error)
	}
)
