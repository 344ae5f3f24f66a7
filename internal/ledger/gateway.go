package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var _ Ledger = (*GatewayClient)(nil)

// GatewayClient talks to an Arweave-style HTTP gateway.
type GatewayClient struct {
	baseURL string
	client  *http.Client
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type gatewayTx struct {
	ID   string `json:"id,omitempty"`
	Data string `json:"data"` // base64url per gateway convention
	Tags []Tag  `json:"tags,omitempty"`
}

func (g *GatewayClient) SubmitTx(ctx context.Context, tx *Tx) (string, error) {
	body, err := json.Marshal(gatewayTx{
		Data: base64.RawURLEncoding.EncodeToString(tx.Data),
		Tags: tx.Tags,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/tx", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		logrus.Errorf("ledger gateway rejected tx: %v", res.Status)
		return "", fmt.Errorf("%w: %s", ErrTxRejected, res.Status)
	}

	var ack gatewayTx
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		return "", err
	}

	if ack.ID == "" {
		return "", ErrTxRejected
	}

	return ack.ID, nil
}

func (g *GatewayClient) GetTx(ctx context.Context, id string) (*Tx, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/tx/"+id, nil)
	if err != nil {
		return nil, err
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrTxNotFound
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger gateway error: %s", res.Status)
	}

	var raw gatewayTx
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw.Data)
	if err != nil {
		return nil, err
	}

	return &Tx{ID: raw.ID, Data: data, Tags: raw.Tags}, nil
}
