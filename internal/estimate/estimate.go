package estimate

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bucketops/bucketops/internal/trace"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Registry maps each content category to the counter used for it. Adding a category needs
// a registry entry and nothing else.
type Registry struct {
	counters map[Kind]Counter
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[Kind]Counter)}
}

// Register sets the counter for kind, replacing any existing one.
func (r *Registry) Register(kind Kind, counter Counter) {
	r.counters[kind] = counter
}

func (r *Registry) Lookup(kind Kind) (Counter, bool) {
	c, ok := r.counters[kind]
	return c, ok
}

// Kinds returns the registered categories in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.counters))
	for kind := range r.counters {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Result is the estimate for a single file.
type Result struct {
	Path       string
	Kind       Kind
	MIME       string
	Size       int64
	Operations Operations
}

// EstimateFile classifies the file at path and counts it with the registered counter. A file
// whose category has no counter is reported as ErrUnsupportedType.
func (r *Registry) EstimateFile(ctx context.Context, path string) (*Result, error) {
	_, span := trace.Start(ctx, "Registry.EstimateFile")
	defer span.End()

	class, err := Classify(path)
	if err != nil {
		return nil, trace.NewError(span, "failed to classify %s: %w", path, err)
	}

	counter, ok := r.Lookup(class.Kind)
	if !ok {
		return nil, trace.NewError(span, "%w: no counter registered for %s", ErrUnsupportedType, class.Kind)
	}

	result := &Result{
		Path: path,
		Kind: class.Kind,
		MIME: class.MIME,
	}

	if sc, ok := counter.(SizeCounter); ok {
		info, err := os.Stat(path)
		if err != nil {
			return nil, trace.NewError(span, "failed to stat %s: %w", path, err)
		}
		result.Size = info.Size()
		result.Operations = sc.CountSize(info.Size())
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, trace.NewError(span, "failed to read %s: %w", path, err)
		}
		result.Size = int64(len(content))
		result.Operations = counter.Count(content)
	}

	span.SetAttributes(
		attribute.String("kind", string(result.Kind)),
		attribute.Int64("class_a", result.Operations.ClassA),
		attribute.Int64("class_b", result.Operations.ClassB),
		attribute.Int64("free", result.Operations.Free),
	)

	log.Debug().
		Str("path", path).
		Str("kind", string(result.Kind)).
		Int64("size", result.Size).
		Stringer("operations", result.Operations).
		Msg("estimated operations")

	return result, nil
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%s): %s", r.Path, r.Kind, r.Operations)
}
