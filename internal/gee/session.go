package gee

import (
	"context"
	"encoding/json"
	"sync"

	"geedownloader/internal/earthengine"
	"geedownloader/internal/infra"
)

// SessionManager establishes verified engine sessions per project
// identity. Verification and caching are serialized under one mutex so
// concurrent requests for different projects cannot interleave
// half-initialized sessions.
type SessionManager struct {
	open           SessionOpener
	defaultProject string
	logger         infra.Logger

	mu       sync.Mutex
	sessions map[string]EngineSession
}

func NewSessionManager(open SessionOpener, defaultProject string, logger infra.Logger) *SessionManager {
	return &SessionManager{
		open:           open,
		defaultProject: defaultProject,
		logger:         logger,
		sessions:       make(map[string]EngineSession),
	}
}

// Ensure returns a verified session for the project identity, falling
// back to the default project when none is supplied. The first call per
// project performs a trivial compute round trip against the engine;
// later calls reuse the cached session.
func (m *SessionManager) Ensure(ctx context.Context, projectID string) (EngineSession, error) {
	project := projectID
	if project == "" {
		project = m.defaultProject
	}
	if project == "" {
		return nil, &SessionError{
			Kind:   SessionNotAuthorized,
			Detail: "project id is required and no default project is configured",
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[project]; ok {
		return sess, nil
	}

	sess := m.open(project)
	if err := verify(ctx, sess); err != nil {
		m.logger.Warn().Str("project", project).Err(err).Msg("gee: session verification failed")
		return nil, err
	}

	m.logger.Info().Str("project", project).Msg("gee: session established")
	m.sessions[project] = sess
	return sess, nil
}

// Bare returns an unverified session for callers that tolerate session
// failure and want to proceed against whatever state the engine holds.
func (m *SessionManager) Bare(projectID string) EngineSession {
	project := projectID
	if project == "" {
		project = m.defaultProject
	}
	return m.open(project)
}

// Forget drops a cached session so the next Ensure re-verifies. Used when
// a caller re-authenticates.
func (m *SessionManager) Forget(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, projectID)
}

// verify issues the 1+2 round trip and demands the expected result. A
// reachable engine that computes the wrong answer is treated as a broken
// session, not a transient failure.
func verify(ctx context.Context, sess EngineSession) error {
	result, err := sess.ComputeValue(ctx, earthengine.NumberAddExpression(1, 2))
	if err != nil {
		return classifySessionError(sess.ProjectID(), err)
	}
	if !isThree(result) {
		return &SessionError{
			Kind:    SessionVerificationFailed,
			Project: sess.ProjectID(),
			Detail:  "verification round trip returned an unexpected result",
		}
	}
	return nil
}

func isThree(v any) bool {
	switch n := v.(type) {
	case int:
		return n == 3
	case int64:
		return n == 3
	case float64:
		return n == 3
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 3
	default:
		return false
	}
}
