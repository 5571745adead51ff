package audit

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"pactum/pkg/requestcontext"

	"github.com/stretchr/testify/suite"
)

// mockEmitter is a test double for the Emitter interface.
type mockEmitter struct {
	events    []Event
	shouldErr bool
}

func (m *mockEmitter) Emit(_ context.Context, event Event) error {
	if m.shouldErr {
		return errors.New("emit failed")
	}
	m.events = append(m.events, event)
	return nil
}

// LoggerSuite tests the audit Logger helper.
//
// Justification: The Logger has conditional enrichment (request_id from context)
// and error handling paths that are unreachable via feature tests.
type LoggerSuite struct {
	suite.Suite
	emitter *mockEmitter
	logger  *Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.emitter = &mockEmitter{}
	textLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s.logger = NewLogger(textLogger, s.emitter)
}

func (s *LoggerSuite) TestLogEnrichesWithRequestID() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-12345")

	s.logger.Log(ctx, "receipt_appended", "subject_id", "550e8400-e29b-41d4-a716-446655440001")

	s.Require().Len(s.emitter.events, 1)
	s.Equal("req-12345", s.emitter.events[0].RequestID)
}

func (s *LoggerSuite) TestLogExtractsSubjectID() {
	ctx := context.Background()

	s.logger.Log(ctx, "receipt_appended", "subject_id", "550e8400-e29b-41d4-a716-446655440001")

	s.Require().Len(s.emitter.events, 1)
	s.Equal("550e8400-e29b-41d4-a716-446655440001", s.emitter.events[0].SubjectID.String())
	s.Equal("550e8400-e29b-41d4-a716-446655440001", s.emitter.events[0].Subject)
}

func (s *LoggerSuite) TestLogPrefersReceiptHashAsSubject() {
	ctx := context.Background()
	hash := "a3f2b8c1d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f"

	s.logger.Log(ctx, "receipt_appended",
		"subject_id", "550e8400-e29b-41d4-a716-446655440001",
		"receipt_hash", hash,
	)

	s.Require().Len(s.emitter.events, 1)
	s.Equal(hash, s.emitter.events[0].Subject)
}

func (s *LoggerSuite) TestLogResolvesCategory() {
	ctx := context.Background()

	s.logger.Log(ctx, "receipt_appended", "subject_id", "test-id")
	s.logger.Log(ctx, "append_rejected", "subject_id", "test-id")
	s.logger.Log(ctx, "chain_verified")

	s.Require().Len(s.emitter.events, 3)
	s.Equal(CategoryCompliance, s.emitter.events[0].Category)
	s.Equal(CategorySecurity, s.emitter.events[1].Category)
	s.Equal(CategoryOperations, s.emitter.events[2].Category)
}

func (s *LoggerSuite) TestLogHandlesEmitError() {
	s.emitter.shouldErr = true
	ctx := context.Background()

	// Should not panic, error is logged but not propagated
	s.NotPanics(func() {
		s.logger.Log(ctx, "receipt_appended", "subject_id", "test-id")
	})

	// No events stored because emit failed
	s.Empty(s.emitter.events)
}

func (s *LoggerSuite) TestLogSkipsNilEmitter() {
	textLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	loggerWithoutEmitter := NewLogger(textLogger, nil)

	// Should not panic when emitter is nil
	s.NotPanics(func() {
		loggerWithoutEmitter.Log(context.Background(), "receipt_appended", "subject_id", "test-id")
	})
}

func (s *LoggerSuite) TestLogSkipsNilTextLogger() {
	emitter := &mockEmitter{}
	loggerWithoutText := NewLogger(nil, emitter)

	// Should not panic when text logger is nil
	s.NotPanics(func() {
		loggerWithoutText.Log(context.Background(), "receipt_appended", "subject_id", "test-id")
	})

	// But emit should still work
	s.Len(emitter.events, 1)
}

func (s *LoggerSuite) TestLogHandlesInvalidSubjectID() {
	ctx := context.Background()

	// Invalid UUID should not panic, just result in nil SubjectID
	s.NotPanics(func() {
		s.logger.Log(ctx, "receipt_appended", "subject_id", "not-a-valid-uuid")
	})

	s.Require().Len(s.emitter.events, 1)
	s.True(s.emitter.events[0].SubjectID.IsNil())
	s.Equal("not-a-valid-uuid", s.emitter.events[0].Subject) // Subject still set
}

func (s *LoggerSuite) TestLogWithoutRequestID() {
	ctx := context.Background() // No request ID in context

	s.logger.Log(ctx, "receipt_appended", "subject_id", "test-id")

	s.Require().Len(s.emitter.events, 1)
	s.Empty(s.emitter.events[0].RequestID)
}
