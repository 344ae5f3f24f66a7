package article

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	v1 "github.com/emrgen/article/apis/v1"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Client is the RPC client of the article service. Every call is a
// multipart form POST against the single endpoint, tagged with the
// operation's rpc_type.
type Client interface {
	io.Closer

	GetArticle(ctx context.Context, aid string) (*v1.Article, error)
	UpdateArticle(ctx context.Context, request *v1.UpdateArticleRequest) (*v1.UpdateArticleResponse, error)
	DeleteArticle(ctx context.Context, aid string) error
	ListArticles(ctx context.Context) ([]*v1.Article, error)
	RankTopicsTopK(ctx context.Context, topic string, topK int) ([]*v1.Article, error)
	ReportUpchainTx(ctx context.Context, request *v1.ReportUpchainTxRequest) (*v1.ArTxRecord, error)
	GetUpchainTx(ctx context.Context, txID string) (*v1.ArTxRecord, error)
	GetUpchainTxs(ctx context.Context, msgType string) ([]*v1.ArTxRecord, error)
	UpdateArticleTopics(ctx context.Context, aid string, topics []string) error
	SearchTopics(ctx context.Context, topic string) ([]*v1.Topic, error)
	GetUser(ctx context.Context, uid string) (*v1.User, error)
	CreateUser(ctx context.Context) (*v1.User, error)
	UpdateUser(ctx context.Context, meta string) (*v1.User, error)
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client against baseURL. The token is sent as a
// bearer credential on every call; it may be empty for read-only use.
func NewClient(baseURL, token string) Client {
	return &client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *client) GetArticle(ctx context.Context, aid string) (*v1.Article, error) {
	var article v1.Article
	form := url.Values{"aid": {aid}}
	if err := c.call(ctx, v1.RPCGetArticle, form, nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *client) UpdateArticle(ctx context.Context, request *v1.UpdateArticleRequest) (*v1.UpdateArticleResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	var response v1.UpdateArticleResponse
	form := url.Values{"article_json": {string(payload)}}
	if err := c.call(ctx, v1.RPCUpdateArticle, form, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *client) DeleteArticle(ctx context.Context, aid string) error {
	form := url.Values{"aid": {aid}}
	return c.call(ctx, v1.RPCDeleteArticle, form, nil, nil)
}

func (c *client) ListArticles(ctx context.Context) ([]*v1.Article, error) {
	var articles []*v1.Article
	if err := c.call(ctx, v1.RPCListArticles, url.Values{}, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *client) RankTopicsTopK(ctx context.Context, topic string, topK int) ([]*v1.Article, error) {
	var articles []*v1.Article
	form := url.Values{"topic": {topic}, "top_k": {strconv.Itoa(topK)}}
	if err := c.call(ctx, v1.RPCRankTopicsTopK, form, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *client) ReportUpchainTx(ctx context.Context, request *v1.ReportUpchainTxRequest) (*v1.ArTxRecord, error) {
	var record v1.ArTxRecord
	form := url.Values{
		"tx_id":        {request.TxID},
		"uid":          {request.UID},
		"content_type": {request.ContentType},
		"headers":      {request.Headers},
		"msg_type":     {request.MsgType},
	}
	if err := c.call(ctx, v1.RPCReportUpchainTx, form, request.Content, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *client) GetUpchainTx(ctx context.Context, txID string) (*v1.ArTxRecord, error) {
	var record v1.ArTxRecord
	form := url.Values{"tx_id": {txID}}
	if err := c.call(ctx, v1.RPCGetUpchainTx, form, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *client) GetUpchainTxs(ctx context.Context, msgType string) ([]*v1.ArTxRecord, error) {
	var records []*v1.ArTxRecord
	form := url.Values{"msg_type": {msgType}}
	if err := c.call(ctx, v1.RPCGetUpchainTxs, form, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *client) UpdateArticleTopics(ctx context.Context, aid string, topics []string) error {
	form := url.Values{"aid": {aid}, "topics": topics}
	return c.call(ctx, v1.RPCUpdateArticleTopics, form, nil, nil)
}

func (c *client) SearchTopics(ctx context.Context, topic string) ([]*v1.Topic, error) {
	var topics []*v1.Topic
	form := url.Values{"topic": {topic}}
	if err := c.call(ctx, v1.RPCSearchTopics, form, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (c *client) GetUser(ctx context.Context, uid string) (*v1.User, error) {
	var user v1.User
	form := url.Values{"uid": {uid}}
	if err := c.call(ctx, v1.RPCGetUser, form, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) CreateUser(ctx context.Context) (*v1.User, error) {
	var user v1.User
	if err := c.call(ctx, v1.RPCCreateUser, url.Values{}, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) UpdateUser(ctx context.Context, meta string) (*v1.User, error) {
	var user v1.User
	form := url.Values{"meta": {meta}}
	if err := c.call(ctx, v1.RPCUpdateUser, form, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// call posts one tagged multipart form request. A non-nil content is sent
// as a file part. The response body is decoded into out when out is non-nil.
func (c *client) call(ctx context.Context, rpcType string, form url.Values, content []byte, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("rpc_type", rpcType); err != nil {
		return err
	}
	for name, values := range form {
		for _, value := range values {
			if err := writer.WriteField(name, value); err != nil {
				return err
			}
		}
	}
	if content != nil {
		part, err := writer.CreateFormFile("content", "content")
		if err != nil {
			return err
		}
		if _, err := part.Write(content); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rpc", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func decodeError(res *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	message := res.Status
	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, message)
	default:
		return errors.New(message)
	}
}
