// Package v1 defines the wire types of the article RPC endpoint. Every call
// is a multipart form POST carrying an rpc_type field that selects the
// operation.
package v1

import "time"

// RPC operation tags.
const (
	RPCGetArticle          = "GET_ARTICLE"
	RPCUpdateArticle       = "UPDATE_ARTICLE"
	RPCDeleteArticle       = "DELETE_ARTICLE"
	RPCListArticles        = "LIST_ARTICLES"
	RPCRankTopicsTopK      = "RANK_TOPICS_TOPK"
	RPCReportUpchainTx     = "REPORT_UPCHAIN_TX"
	RPCGetUpchainTx        = "GET_UPCHAIN_TX"
	RPCGetUpchainTxs       = "GET_UPCHAIN_TXS"
	RPCUpdateArticleTopics = "UPDATE_ARTICLE_TOPICS"
	RPCSearchTopics        = "SEARCH_TOPICS"
	RPCGetUser             = "GET_USER"
	RPCCreateUser          = "CREATE_USER"
	RPCUpdateUser          = "UPDATE_USER"
)

// Article is the article record as it crosses the wire. Content and tags
// stay serialized; their internal schema belongs to the editor.
type Article struct {
	AID       string    `json:"aid,omitempty"`
	UID       string    `json:"uid"`
	Title     string    `json:"title"`
	Poster    string    `json:"poster,omitempty"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags,omitempty"`
	Chain     string    `json:"chain,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// UpdateArticleRequest carries the article payload of an UPDATE_ARTICLE
// call. Presence of the aid selects update over insert. UpdatedAt, when
// set on an update, is a precondition: a mismatch with the stored record
// fails the call instead of silently overwriting a concurrent write.
type UpdateArticleRequest struct {
	AID       string     `json:"aid,omitempty"`
	UID       string     `json:"uid" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Poster    string     `json:"poster,omitempty"`
	Content   string     `json:"content" validate:"required"`
	Tags      string     `json:"tags,omitempty"`
	Chain     string     `json:"chain,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UpdateArticleResponse returns the bound aid and the stored updated_at so
// the caller can carry a fresh precondition into its next update.
type UpdateArticleResponse struct {
	AID       string    `json:"aid"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArTxRecord is the ledger audit record as it crosses the wire. Content is
// omitted from list responses.
type ArTxRecord struct {
	ID          uint      `json:"id"`
	TxID        string    `json:"tx_id"`
	UID         string    `json:"uid"`
	ContentType string    `json:"content_type"`
	Headers     string    `json:"headers"`
	Content     []byte    `json:"content,omitempty"`
	MsgType     string    `json:"msg_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportUpchainTxRequest records an acknowledged ledger write.
type ReportUpchainTxRequest struct {
	TxID        string `json:"tx_id" validate:"required"`
	UID         string `json:"uid" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Headers     string `json:"headers" validate:"required"`
	Content     []byte `json:"content" validate:"required"`
	MsgType     string `json:"msg_type" validate:"required"`
}

// Topic is one topic index row.
type Topic struct {
	Topic string `json:"topic"`
	AID   string `json:"aid"`
}

// User is the identity record as it crosses the wire.
type User struct {
	UID       string    `json:"uid"`
	Meta      string    `json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
