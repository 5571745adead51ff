package tracer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pactum/internal/ledger/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "test.span",
		tracer.String("key", "value"),
		tracer.Bool("flag", true),
	)

	// Context should be returned unchanged
	assert.Equal(t, ctx, newCtx)
	// Span should not be nil
	require.NotNil(t, span)

	// Span methods should not panic
	span.SetAttributes(tracer.String("another", "attr"))
	span.AddEvent("test.event", tracer.Int64("count", 42))
	span.End(nil)
}

func TestNoopTracer_SpanEndWithError(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	_, span := tr.Start(ctx, "test.span")
	require.NotNil(t, span)

	// Should not panic when ending with error
	span.End(errors.New("test error"))
}

func TestShortHash(t *testing.T) {
	fullHash := strings.Repeat("ab", 32)

	assert.Equal(t, "", tracer.ShortHash(""))
	assert.Equal(t, "abcd", tracer.ShortHash("abcd"))
	assert.Len(t, tracer.ShortHash(fullHash), 16)
	assert.Equal(t, fullHash[:16], tracer.ShortHash(fullHash))
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, tracer.Attribute{Key: "s", Value: "v"}, tracer.String("s", "v"))
	assert.Equal(t, tracer.Attribute{Key: "b", Value: true}, tracer.Bool("b", true))
	assert.Equal(t, tracer.Attribute{Key: "i", Value: int64(7)}, tracer.Int64("i", 7))
	assert.Equal(t, tracer.Attribute{Key: "f", Value: 1.5}, tracer.Float64("f", 1.5))
}
