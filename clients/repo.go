package clients

import (
	"context"
	"errors"
)

var ErrClientNotFound = errors.New("client not found")

type Repo interface {
	Upsert(ctx context.Context, clientData *Client) error
	Delete(ctx context.Context, clientID string) error
	Get(ctx context.Context, clientID string) (*Client, error)
}
