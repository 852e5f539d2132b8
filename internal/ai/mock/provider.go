package mock

import (
	"context"
	"sync/atomic"

	"github.com/kiranshivaraju/codereview/internal/ai"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_        string
	Model_       string
	SuggestFunc  func(ctx context.Context, req models.SuggestRequest) (string, error)
	RefactorFunc func(ctx context.Context, req models.RefactorRequest) (string, error)

	suggestCalls  atomic.Int32
	refactorCalls atomic.Int32
}

func (m *MockProvider) Name() string  { return m.Name_ }
func (m *MockProvider) Model() string { return m.Model_ }

func (m *MockProvider) Suggest(ctx context.Context, req models.SuggestRequest) (string, error) {
	m.suggestCalls.Add(1)
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, req)
	}
	return "", nil
}

func (m *MockProvider) Refactor(ctx context.Context, req models.RefactorRequest) (string, error) {
	m.refactorCalls.Add(1)
	if m.RefactorFunc != nil {
		return m.RefactorFunc(ctx, req)
	}
	return "", nil
}

// SuggestCalls reports how many times Suggest was called.
func (m *MockProvider) SuggestCalls() int { return int(m.suggestCalls.Load()) }

// RefactorCalls reports how many times Refactor was called.
func (m *MockProvider) RefactorCalls() int { return int(m.refactorCalls.Load()) }

// MockRefactoredSource is the code returned inside the fence by NewMockProvider.
const MockRefactoredSource = `import org.slf4j.Logger;
import org.slf4j.LoggerFactory;

public class Mock {
    private static final Logger logger = LoggerFactory.getLogger(Mock.class);

    public void run() {
        logger.info("mock");
    }
}`

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock",
		Model_: "mock-v1",
		SuggestFunc: func(_ context.Context, req models.SuggestRequest) (string, error) {
			return "1. **Logging**: Replace console output with a structured logger call.\n" +
				"2. **Secrets**: Read credentials from the environment instead of source code.\n" +
				"The code contains issues that should be addressed before release.", nil
		},
		RefactorFunc: func(_ context.Context, _ models.RefactorRequest) (string, error) {
			return "Here is the refactored code:\n```java\n" + MockRefactoredSource + "\n```\n", nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		SuggestFunc: func(_ context.Context, _ models.SuggestRequest) (string, error) {
			return "", err
		},
		RefactorFunc: func(_ context.Context, _ models.RefactorRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		SuggestFunc: func(ctx context.Context, _ models.SuggestRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
		RefactorFunc: func(ctx context.Context, _ models.RefactorRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
