package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/auth"
	"github.com/emrgen/article/internal/service"
	"github.com/emrgen/article/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	rpcTypeField = "rpc_type"

	// form parts above this size spill to disk
	maxFormMemory = 10 << 20
)

// Handler is the single-endpoint RPC dispatcher. Every call is a multipart
// form POST whose rpc_type field selects the operation; an unknown tag or
// a missing required field fails the whole request.
type Handler struct {
	articles *service.ArticleService
	ledger   *service.LedgerService
	users    *service.UserService
	verifier auth.TokenVerifier
}

func NewHandler(articles *service.ArticleService, ledger *service.LedgerService, users *service.UserService, verifier auth.TokenVerifier) *Handler {
	return &Handler{
		articles: articles,
		ledger:   ledger,
		users:    users,
		verifier: verifier,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rpcType := r.FormValue(rpcTypeField)
	if rpcType == "" {
		writeError(w, http.StatusBadRequest, errors.New("rpc_type is required"))
		return
	}

	switch rpcType {
	case v1.RPCGetArticle:
		h.getArticle(w, r)
	case v1.RPCUpdateArticle:
		h.updateArticle(w, r)
	case v1.RPCDeleteArticle:
		h.deleteArticle(w, r)
	case v1.RPCListArticles:
		h.listArticles(w, r)
	case v1.RPCRankTopicsTopK:
		h.rankTopicsTopK(w, r)
	case v1.RPCReportUpchainTx:
		h.reportUpchainTx(w, r)
	case v1.RPCGetUpchainTx:
		h.getUpchainTx(w, r)
	case v1.RPCGetUpchainTxs:
		h.getUpchainTxs(w, r)
	case v1.RPCUpdateArticleTopics:
		h.updateArticleTopics(w, r)
	case v1.RPCSearchTopics:
		h.searchTopics(w, r)
	case v1.RPCGetUser:
		h.getUser(w, r)
	case v1.RPCCreateUser:
		h.createUser(w, r)
	case v1.RPCUpdateUser:
		h.updateUser(w, r)
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown rpc_type: "+rpcType))
	}
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	aid, ok := requireFields(w, r, "aid")
	if !ok {
		return
	}

	article, err := h.articles.GetArticle(r.Context(), aid[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, article)
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	payload, ok := requireFields(w, r, "article_json")
	if !ok {
		return
	}

	var request v1.UpdateArticleRequest
	if err := json.Unmarshal([]byte(payload[0]), &request); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("article_json is not valid json"))
		return
	}

	res, err := h.articles.UpdateArticle(r.Context(), caller, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, res)
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	aid, ok := requireFields(w, r, "aid")
	if !ok {
		return
	}

	if err := h.articles.DeleteArticle(r.Context(), caller, aid[0]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListArticles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, articles)
}

func (h *Handler) rankTopicsTopK(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireFields(w, r, "topic", "top_k")
	if !ok {
		return
	}

	topK, err := strconv.Atoi(fields[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("top_k must be an integer"))
		return
	}

	articles, err := h.articles.RankTopicsTopK(r.Context(), fields[0], topK)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, articles)
}

func (h *Handler) reportUpchainTx(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	fields, ok := requireFields(w, r, "tx_id", "uid", "content_type", "headers", "msg_type")
	if !ok {
		return
	}

	if caller != fields[1] {
		writeError(w, http.StatusForbidden, service.ErrNotArticleOwner)
		return
	}

	content, err := formContent(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	record, err := h.ledger.ReportUpchainTx(r.Context(), &v1.ReportUpchainTxRequest{
		TxID:        fields[0],
		UID:         fields[1],
		ContentType: fields[2],
		Headers:     fields[3],
		Content:     content,
		MsgType:     fields[4],
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, record)
}

func (h *Handler) getUpchainTx(w http.ResponseWriter, r *http.Request) {
	txID, ok := requireFields(w, r, "tx_id")
	if !ok {
		return
	}

	record, err := h.ledger.GetUpchainTx(r.Context(), txID[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, record)
}

func (h *Handler) getUpchainTxs(w http.ResponseWriter, r *http.Request) {
	msgType, ok := requireFields(w, r, "msg_type")
	if !ok {
		return
	}

	records, err := h.ledger.GetUpchainTxs(r.Context(), msgType[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, records)
}

func (h *Handler) updateArticleTopics(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	aid, ok := requireFields(w, r, "aid")
	if !ok {
		return
	}

	topics := r.Form["topics"]

	if err := h.articles.UpdateArticleTopics(r.Context(), caller, aid[0], topics); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) searchTopics(w http.ResponseWriter, r *http.Request) {
	topic, ok := requireFields(w, r, "topic")
	if !ok {
		return
	}

	topics, err := h.articles.SearchTopics(r.Context(), topic[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, topics)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireFields(w, r, "uid")
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), uid[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	user, err := h.users.CreateUser(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	meta := r.FormValue("meta")

	user, err := h.users.UpdateUser(r.Context(), caller, meta)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, user)
}

// authorize resolves the caller uid from the bearer token. Mutating
// operations go through here; a failed verification blocks the call.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return "", false
	}

	uid, err := h.verifier.VerifyToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return "", false
	}

	return uid, true
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrTokenMissing
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", auth.ErrTokenInvalid
	}

	return strings.TrimPrefix(header, "Bearer "), nil
}

func parseForm(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}

	return r.ParseForm()
}

// requireFields reads the named form fields and fails the request when any
// is missing. There is no partial success.
func requireFields(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	values := make([]string, 0, len(names))
	for _, name := range names {
		value := r.FormValue(name)
		if value == "" {
			writeError(w, http.StatusBadRequest, errors.New(name+" is required"))
			return nil, false
		}
		values = append(values, value)
	}

	return values, true
}

// formContent reads the content payload, either as a file part or a plain
// form value.
func formContent(r *http.Request) ([]byte, error) {
	if r.MultipartForm != nil {
		if file, _, err := r.FormFile("content"); err == nil {
			defer file.Close()
			return io.ReadAll(file)
		}
	}

	value := r.FormValue("content")
	if value == "" {
		return nil, errors.New("content is required")
	}

	return []byte(value), nil
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrInvalidArticleID):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrNotArticleOwner):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, service.ErrStaleArticleUpdate):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrArticleNotFound),
		errors.Is(err, store.ErrArTxRecordNotFound),
		errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		logrus.Errorf("rpc call failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}
