package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/auth"
	"github.com/emrgen/article/internal/cache"
	"github.com/emrgen/article/internal/compress"
	"github.com/emrgen/article/internal/queue"
	"github.com/emrgen/article/internal/service"
	"github.com/emrgen/article/internal/store"
	"github.com/emrgen/article/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	gs := store.NewGormStore(tester.TestDB())
	return NewHandler(
		service.NewArticleService(gs, cache.NewNullArticleCache(), queue.NewNullArticleQueue()),
		service.NewLedgerService(compress.NameGZip, gs),
		service.NewUserService(gs),
		auth.NewNullTokenVerifier(),
	)
}

// postForm sends a urlencoded RPC call. The null verifier treats the token
// as the caller uid.
func postForm(t *testing.T, handler *Handler, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/rpc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandler_RejectsNonPost(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/rpc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_UnknownRPCType(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()

	w := postForm(t, handler, "", url.Values{"rpc_type": {"NOT_A_THING"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(t, handler, "", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MissingFieldFailsWholeRequest(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()

	w := postForm(t, handler, "", url.Values{"rpc_type": {v1.RPCGetArticle}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload["error"], "aid")
}

func TestHandler_UpdateArticleRequiresToken(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()

	w := postForm(t, handler, "", url.Values{
		"rpc_type":     {v1.RPCUpdateArticle},
		"article_json": {`{"uid":"u1","title":"t","content":"{}"}`},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_UpdateAndGetArticle(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()
	uid := uuid.New().String()

	payload, err := json.Marshal(&v1.UpdateArticleRequest{
		UID:     uid,
		Title:   "Through the Wire",
		Content: `{"type":"doc"}`,
	})
	require.NoError(t, err)

	w := postForm(t, handler, uid, url.Values{
		"rpc_type":     {v1.RPCUpdateArticle},
		"article_json": {string(payload)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created v1.UpdateArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	_, err = uuid.Parse(created.AID)
	assert.NoError(t, err)

	w = postForm(t, handler, "", url.Values{
		"rpc_type": {v1.RPCGetArticle},
		"aid":      {created.AID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var article v1.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &article))
	assert.Equal(t, "Through the Wire", article.Title)
	assert.Equal(t, uid, article.UID)
}

func TestHandler_UpdateArticle_ForbiddenForStranger(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()
	owner := uuid.New().String()

	payload, err := json.Marshal(&v1.UpdateArticleRequest{
		UID:     owner,
		Title:   "Mine",
		Content: `{"type":"doc"}`,
	})
	require.NoError(t, err)

	// token says stranger, payload says owner
	w := postForm(t, handler, uuid.New().String(), url.Values{
		"rpc_type":     {v1.RPCUpdateArticle},
		"article_json": {string(payload)},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetArticle_NotFoundAndInvalid(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()

	w := postForm(t, handler, "", url.Values{
		"rpc_type": {v1.RPCGetArticle},
		"aid":      {uuid.New().String()},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postForm(t, handler, "", url.Values{
		"rpc_type": {v1.RPCGetArticle},
		"aid":      {"abc"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ReportUpchainTx_Multipart(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()
	uid := uuid.New().String()
	txID := "tx-" + uuid.New().String()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("rpc_type", v1.RPCReportUpchainTx))
	require.NoError(t, writer.WriteField("tx_id", txID))
	require.NoError(t, writer.WriteField("uid", uid))
	require.NoError(t, writer.WriteField("content_type", "text/html"))
	require.NoError(t, writer.WriteField("headers", `[]`))
	require.NoError(t, writer.WriteField("msg_type", "article"))
	part, err := writer.CreateFormFile("content", "content")
	require.NoError(t, err)
	_, err = part.Write([]byte("<html><body>snapshot</body></html>"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/rpc", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+uid)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var record v1.ArTxRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, txID, record.TxID)

	// the caller can only report transactions for themselves
	w = postForm(t, handler, uuid.New().String(), url.Values{
		"rpc_type":     {v1.RPCReportUpchainTx},
		"tx_id":        {"tx-other"},
		"uid":          {uid},
		"content_type": {"text/html"},
		"headers":      {`[]`},
		"msg_type":     {"article"},
		"content":      {"<html></html>"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_UpdateArticleTopics(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()
	uid := uuid.New().String()

	payload, err := json.Marshal(&v1.UpdateArticleRequest{
		UID:     uid,
		Title:   "Tagged",
		Content: `{"type":"doc"}`,
	})
	require.NoError(t, err)

	w := postForm(t, handler, uid, url.Values{
		"rpc_type":     {v1.RPCUpdateArticle},
		"article_json": {string(payload)},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created v1.UpdateArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = postForm(t, handler, uid, url.Values{
		"rpc_type": {v1.RPCUpdateArticleTopics},
		"aid":      {created.AID},
		"topics":   {"go", "systems"},
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = postForm(t, handler, "", url.Values{
		"rpc_type": {v1.RPCSearchTopics},
		"topic":    {"go"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var topics []*v1.Topic
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &topics))
	require.Len(t, topics, 1)
	assert.Equal(t, created.AID, topics[0].AID)
}

func TestHandler_Users(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()
	handler := newTestHandler()
	uid := uuid.New().String()

	w := postForm(t, handler, uid, url.Values{"rpc_type": {v1.RPCCreateUser}})
	require.Equal(t, http.StatusOK, w.Code)

	var user v1.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, uid, user.UID)

	w = postForm(t, handler, uid, url.Values{
		"rpc_type": {v1.RPCUpdateUser},
		"meta":     {`{"name":"gopher"}`},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(t, handler, "", url.Values{
		"rpc_type": {v1.RPCGetUser},
		"uid":      {uid},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, `{"name":"gopher"}`, user.Meta)
}
