package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiranshivaraju/codereview/internal/ai"
	"github.com/kiranshivaraju/codereview/internal/ai/mock"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockProvider_NameAndModel(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
	assert.Equal(t, "mock-v1", p.Model())
}

func TestNewMockProvider_Suggest(t *testing.T) {
	p := mock.NewMockProvider()
	out, err := p.Suggest(context.Background(), models.SuggestRequest{FileName: "A.java"})
	require.NoError(t, err)
	assert.Contains(t, out, "**Logging**")
	assert.Equal(t, 1, p.SuggestCalls())
}

func TestNewMockProvider_Refactor(t *testing.T) {
	p := mock.NewMockProvider()
	out, err := p.Refactor(context.Background(), models.RefactorRequest{Source: "class A {}"})
	require.NoError(t, err)
	assert.Contains(t, out, "```java\n"+mock.MockRefactoredSource+"\n```")
	assert.Equal(t, 1, p.RefactorCalls())
}

func TestZeroValueMockProvider(t *testing.T) {
	var p mock.MockProvider
	out, err := p.Suggest(context.Background(), models.SuggestRequest{})
	require.NoError(t, err)
	assert.Empty(t, out)
	out, err = p.Refactor(context.Background(), models.RefactorRequest{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNewFailingProvider(t *testing.T) {
	want := errors.New("boom")
	p := mock.NewFailingProvider(want)

	_, err := p.Suggest(context.Background(), models.SuggestRequest{})
	assert.ErrorIs(t, err, want)
	_, err = p.Refactor(context.Background(), models.RefactorRequest{})
	assert.ErrorIs(t, err, want)
	assert.Equal(t, "mock-failing", p.Name())
}

func TestNewTimeoutProvider(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Suggest(ctx, models.SuggestRequest{})
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}
