package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/llm"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type threadFixture struct {
	svc *ThreadService
	llm *fakeLLM
	db  *gorm.DB
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()

	db := newTestDB(t)
	fllm := newFakeLLM()

	// 指向一个不可达地址：缓存读写失败时必须静默降级到数据库
	cache := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	svc := NewThreadService(fllm, repository.NewThreadResultRepository(db), cache, NewCallbackPoster(0))
	svc.spawn = func(fn func()) { fn() }
	return &threadFixture{svc: svc, llm: fllm, db: db}
}

func TestValidateThread(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	// 没给 thread_id：新线程，直接放行
	assert.NoError(t, f.svc.ValidateThread(ctx, ""))

	// 查不到线程
	f.llm.runErr["thread_bad"] = assert.AnError
	err := f.svc.ValidateThread(ctx, "thread_bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid thread ID provided thread_bad")

	// 进行中的 Run 一律拒绝
	for _, status := range []string{
		llm.RunStatusQueued, llm.RunStatusInProgress, llm.RunStatusRequiresAction,
	} {
		f.llm.runStatus["thread_busy"] = status
		err := f.svc.ValidateThread(ctx, "thread_busy")
		require.Error(t, err, status)
		assert.Contains(t, err.Error(),
			"There is an active run on this thread (status: "+status+"). Please wait for it to complete.")
	}

	// 终态的 Run 放行
	f.llm.runStatus["thread_done"] = llm.RunStatusCompleted
	assert.NoError(t, f.svc.ValidateThread(ctx, "thread_done"))

	// 从来没有 Run 过也放行
	assert.NoError(t, f.svc.ValidateThread(ctx, "thread_fresh"))
}

func TestRunSyncSuccess(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.answer = "Paris is the capital【4:0†guide.pdf】."

	resp, err := f.svc.RunSync(context.Background(), dto.ThreadReq{
		Question:       "capital of France?",
		AssistantID:    "asst_1",
		RemoveCitation: true,
		Extra:          map[string]string{"request_id": "r-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, ThreadStatusSuccess, resp.Status)
	assert.Equal(t, "Paris is the capital.", resp.Message)
	assert.Equal(t, "thread_1", resp.ThreadID)
	assert.Equal(t, map[string]string{"request_id": "r-1"}, resp.Extra)

	// 用户消息挂上了线程
	assert.Equal(t, []string{"capital of France?"}, f.llm.messages["thread_1"])

	// 结果落库，缓存不可用不影响
	var row model.ThreadResult
	require.NoError(t, f.db.Where("thread_id = ?", "thread_1").First(&row).Error)
	assert.Equal(t, ThreadStatusSuccess, row.Status)
	assert.Equal(t, "Paris is the capital.", row.Response)
	assert.Equal(t, "capital of France?", row.Prompt)
}

func TestRunSyncKeepsCitationsByDefault(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.answer = "see【1†doc】here"

	resp, err := f.svc.RunSync(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "see【1†doc】here", resp.Message)
}

func TestRunSyncReusesExistingThread(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.answer = "ok"
	f.llm.runStatus["thread_exist"] = llm.RunStatusCompleted

	resp, err := f.svc.RunSync(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
		ThreadID:    "thread_exist",
	})
	require.NoError(t, err)
	assert.Equal(t, "thread_exist", resp.ThreadID)
	assert.Empty(t, f.llm.threads, "不应该新建线程")
}

func TestRunSyncNonCompletedStatus(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.finalStatus = "expired"

	resp, err := f.svc.RunSync(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
	})
	require.NoError(t, err)
	assert.Equal(t, ThreadStatusFailed, resp.Status)
	assert.Contains(t, resp.Message, "run finished with status: expired")

	var row model.ThreadResult
	require.NoError(t, f.db.Where("thread_id = ?", "thread_1").First(&row).Error)
	assert.Equal(t, ThreadStatusFailed, row.Status)
}

func TestStartRunWithCallback(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.answer = "the answer"

	received := make(chan dto.APIResponse, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp dto.APIResponse
		_ = json.NewDecoder(r.Body).Decode(&resp)
		received <- resp
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := f.svc.StartRun(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
		CallbackURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, ThreadStatusProcessing, resp.Status)
	assert.Equal(t, "thread_1", resp.ThreadID)

	cb := <-received
	assert.True(t, cb.Success)

	body, _ := json.Marshal(cb.Data)
	var result dto.ThreadResultResp
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, ThreadStatusSuccess, result.Status)
	assert.Equal(t, "the answer", result.Message)
}

func TestStartRunRejectsBusyThread(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.runStatus["thread_busy"] = llm.RunStatusInProgress

	_, err := f.svc.StartRun(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
		ThreadID:    "thread_busy",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGetResult(t *testing.T) {
	f := newThreadFixture(t)
	f.llm.answer = "done"

	_, err := f.svc.RunSync(context.Background(), dto.ThreadReq{
		Question:    "q",
		AssistantID: "asst_1",
	})
	require.NoError(t, err)

	// 缓存不可达，走数据库兜底
	resp, err := f.svc.GetResult(context.Background(), "thread_1")
	require.NoError(t, err)
	assert.Equal(t, ThreadStatusSuccess, resp.Status)
	assert.Equal(t, "done", resp.Message)

	_, err = f.svc.GetResult(context.Background(), "thread_unknown")
	assert.ErrorIs(t, err, ErrThreadResultNotFound)
}

func TestStripCitations(t *testing.T) {
	cases := map[string]string{
		"plain text":               "plain text",
		"a【4:0†source.pdf】b":       "ab",
		"a【12†file】b":              "ab",
		"【1:2†x】【3†y】":             "",
		"half-open 【1:2 stays":     "half-open 【1:2 stays",
		"nested【1†a】mid【2:3†b】end": "nestedmidend",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCitations(in), in)
	}
}
