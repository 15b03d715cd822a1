package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"doc-chat-be/internal/dto"
	"doc-chat-be/pkg/rag/history"
	"doc-chat-be/pkg/rag/pipeline"
	"doc-chat-be/pkg/store"
)

type fakeHistoryStore struct {
	turns    []store.Turn
	readErr  error
	appended []store.Turn
	trimmed  int
}

func (f *fakeHistoryStore) Read(ctx context.Context, userId uuid.UUID) ([]store.Turn, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.turns, nil
}

func (f *fakeHistoryStore) Append(ctx context.Context, userId uuid.UUID, turn store.Turn) error {
	f.appended = append(f.appended, turn)
	return nil
}

func (f *fakeHistoryStore) TrimOldest(ctx context.Context, userId uuid.UUID, count int) error {
	f.trimmed += count
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(text string, taskType string) ([]float32, error) {
	return f.vector, f.err
}

type fakeRetriever struct {
	fragments []store.Fragment
	gotScope  string
	gotTopK   int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, userId uuid.UUID, queryVector []float32, scope string, topK int) ([]store.Fragment, error) {
	f.gotScope = scope
	f.gotTopK = topK
	return f.fragments, nil
}

type fakeController struct {
	result     *pipeline.Result
	err        error
	gotHistory []store.Turn
}

func (f *fakeController) Ask(ctx context.Context, question string, fragments []store.Fragment, hist []store.Turn) (*pipeline.Result, error) {
	f.gotHistory = hist
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePusher struct {
	frames [][]byte
}

func (f *fakePusher) Send(userId uuid.UUID, data []byte) bool {
	f.frames = append(f.frames, data)
	return true
}

type fixedEstimator struct{ tokens int }

func (e fixedEstimator) EstimateTokens(text string) int { return e.tokens }

func newTestChatService(hs *fakeHistoryStore, ctrl *fakeController, pusher *fakePusher) IChatService {
	return NewChatService(
		hs,
		&fakeEmbedder{vector: []float32{0.1, 0.2}},
		&fakeRetriever{fragments: []store.Fragment{{FileName: "a.txt", Text: "x"}}},
		ctrl,
		history.NewCompactor(fixedEstimator{tokens: 1}, 2500),
		pusher,
		5,
		nopLogger{},
	)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestAskPersistsBothTurns(t *testing.T) {
	hs := &fakeHistoryStore{turns: []store.Turn{{Speaker: store.SpeakerUser, Message: "earlier"}}}
	ctrl := &fakeController{result: &pipeline.Result{Answer: "42", Citations: []string{"a.txt"}, Attempts: 1}}
	pusher := &fakePusher{}
	svc := newTestChatService(hs, ctrl, pusher)

	res, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{Question: "meaning of life?"})

	assert.NoError(t, err)
	assert.Equal(t, "42", res.Answer)
	assert.Equal(t, []string{"a.txt"}, res.Citations)

	// User turn then bot turn, in order.
	if assert.Len(t, hs.appended, 2) {
		assert.Equal(t, store.SpeakerUser, hs.appended[0].Speaker)
		assert.Equal(t, "meaning of life?", hs.appended[0].Message)
		assert.Equal(t, store.SpeakerBot, hs.appended[1].Speaker)
		assert.Equal(t, "42", hs.appended[1].Message)
	}
	assert.Equal(t, 0, hs.trimmed)

	// Prior history reached the controller.
	assert.Equal(t, hs.turns, ctrl.gotHistory)
}

func TestAskDegradesWhenHistoryStoreDown(t *testing.T) {
	hs := &fakeHistoryStore{readErr: errors.New("redis gone")}
	ctrl := &fakeController{result: &pipeline.Result{Answer: "ok", Attempts: 1}}
	svc := newTestChatService(hs, ctrl, &fakePusher{})

	res, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{Question: "q"})

	// The turn still succeeds.
	assert.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)

	// Controller saw an empty history and nothing was persisted.
	assert.Empty(t, ctrl.gotHistory)
	assert.Empty(t, hs.appended)
	assert.Equal(t, 0, hs.trimmed)
}

func TestAskGenerationFailureLeavesHistoryUntouched(t *testing.T) {
	hs := &fakeHistoryStore{}
	ctrl := &fakeController{err: pipeline.ErrInputTooLong}
	svc := newTestChatService(hs, ctrl, &fakePusher{})

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{Question: "q"})

	assert.ErrorIs(t, err, pipeline.ErrInputTooLong)
	assert.Empty(t, hs.appended)
}

func TestAskTrimsWhenOverBudget(t *testing.T) {
	hs := &fakeHistoryStore{turns: []store.Turn{
		{Speaker: store.SpeakerUser, Message: "old 1"},
		{Speaker: store.SpeakerBot, Message: "old 2"},
		{Speaker: store.SpeakerUser, Message: "old 3"},
	}}
	ctrl := &fakeController{result: &pipeline.Result{Answer: "a", Attempts: 1}}

	// Estimator always over budget: every retained turn gets dropped.
	svc := NewChatService(
		hs,
		&fakeEmbedder{vector: []float32{0.1}},
		&fakeRetriever{},
		ctrl,
		history.NewCompactor(fixedEstimator{tokens: 1 << 30}, 2500),
		&fakePusher{},
		5,
		nopLogger{},
	)

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{Question: "q"})

	assert.NoError(t, err)
	assert.Equal(t, 3, hs.trimmed)
	assert.Len(t, hs.appended, 2)
}

func TestAskPushesToLiveConnection(t *testing.T) {
	hs := &fakeHistoryStore{}
	ctrl := &fakeController{result: &pipeline.Result{Answer: "pushed", Citations: []string{"a.txt"}, Attempts: 2}}
	pusher := &fakePusher{}
	svc := newTestChatService(hs, ctrl, pusher)

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{Question: "q"})

	assert.NoError(t, err)
	if assert.Len(t, pusher.frames, 1) {
		var push dto.ChatPush
		assert.NoError(t, json.Unmarshal(pusher.frames[0], &push))
		assert.Equal(t, "chat_answer", push.Type)
		assert.Equal(t, "pushed", push.Answer)
		assert.Equal(t, []string{"a.txt"}, push.Citations)
	}
}

func TestAskForwardsScopeAndTopK(t *testing.T) {
	hs := &fakeHistoryStore{}
	ctrl := &fakeController{result: &pipeline.Result{Answer: "a", Attempts: 1}}
	ret := &fakeRetriever{}
	svc := NewChatService(
		hs,
		&fakeEmbedder{vector: []float32{0.1}},
		ret,
		ctrl,
		history.NewCompactor(fixedEstimator{tokens: 1}, 2500),
		&fakePusher{},
		7,
		nopLogger{},
	)

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.ChatRequest{
		Question:      "q",
		DocumentScope: "notes.txt",
	})

	assert.NoError(t, err)
	assert.Equal(t, "notes.txt", ret.gotScope)
	assert.Equal(t, 7, ret.gotTopK)
}
