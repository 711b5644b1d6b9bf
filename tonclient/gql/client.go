// Package gql queries accounts and messages from a node's GraphQL endpoint.
package gql

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const (
	defaultWaitForTimeout = 5 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
)

var (
	_ tonclient.AccountQuerier = (*Client)(nil)
	_ tonclient.MessageQuerier = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithWaitForTimeout sets how long WaitForAccount blocks.
func WithWaitForTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.waitForTimeout = d
	}
}

// WithPollInterval sets the delay between WaitForAccount queries.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithLogger sets the logger.
func WithLogger(lggr logger.Logger) Option {
	return func(c *Client) {
		c.lggr = lggr
	}
}

// Client is a GraphQL account and message querier.
type Client struct {
	http           *resty.Client
	waitForTimeout time.Duration
	pollInterval   time.Duration
	lggr           logger.Logger
}

// New returns a Client for the node at endpoint. The GraphQL path is appended to it.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(endpoint, "/")).
			SetTimeout(defaultRequestTimeout).
			SetHeader("Content-Type", "application/json"),
		waitForTimeout: defaultWaitForTimeout,
		pollInterval:   defaultPollInterval,
		lggr:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type response[T any] struct {
	Data   T          `json:"data"`
	Errors []gqlError `json:"errors"`
}

// do posts query and decodes its data into a T.
func do[T any](ctx context.Context, c *Client, query string, vars map[string]any) (T, error) {
	var (
		out  response[T]
		zero T
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{Query: query, Variables: vars}).
		SetResult(&out).
		Post("/graphql")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		return zero, &tonclient.Error{Code: tonclient.CodeNetQueryFailed, Message: err.Error()}
	}

	if resp.StatusCode() != http.StatusOK {
		code := tonclient.CodeNetQueryFailed
		if resp.StatusCode() < http.StatusInternalServerError {
			code = tonclient.CodeNetGraphqlError
		}

		return zero, &tonclient.Error{
			Code:    code,
			Message: fmt.Sprintf("graphql request failed with status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}

		return zero, &tonclient.Error{Code: tonclient.CodeNetGraphqlError, Message: strings.Join(msgs, "; ")}
	}

	return out.Data, nil
}

const accountQuery = `query account($id: String!) {
  accounts(filter: {id: {eq: $id}}) {
    id
    balance
    boc
  }
}`

type account struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
	BOC     string `json:"boc"`
}

// QueryAccount returns the account at address or nil when it does not exist.
func (c *Client) QueryAccount(ctx context.Context, address string) (*tonclient.Account, error) {
	data, err := do[struct {
		Accounts []account `json:"accounts"`
	}](ctx, c, accountQuery, map[string]any{"id": address})
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", address, err)
	}
	if len(data.Accounts) == 0 {
		return nil, nil //nolint:nilnil // absent account
	}

	raw := data.Accounts[0]
	acc := &tonclient.Account{ID: raw.ID, BOC: raw.BOC}
	if raw.Balance != "" {
		balance, err := abi.ParseBigInt(raw.Balance)
		if err != nil {
			return nil, &tonclient.Error{
				Code:    tonclient.CodeNetInvalidServerResponse,
				Message: fmt.Sprintf("invalid balance %q: %v", raw.Balance, err),
			}
		}
		acc.Balance = balance
	}

	return acc, nil
}

// WaitForAccount polls the account at address until it matches filter or the wait-for timeout
// elapses.
func (c *Client) WaitForAccount(
	ctx context.Context, address string, filter tonclient.AccountFilter,
) (*tonclient.Account, error) {
	acc, err := tonclient.PollAccount(ctx, c.QueryAccount, address, filter, c.waitForTimeout, c.pollInterval)
	if err != nil {
		c.lggr.Debugw("Wait for account failed", "address", address, "timeout", c.waitForTimeout, "err", err)

		return nil, err
	}

	return acc, nil
}

const messagesQuery = `query messages($filter: MessageFilter) {
  messages(filter: $filter) {
    id
    body
    src
    dst
    msg_type
  }
}`

// QueryMessages lists the messages matching filter.
func (c *Client) QueryMessages(ctx context.Context, filter tonclient.MessageFilter) ([]tonclient.Message, error) {
	f := map[string]any{}
	if filter.Src != "" {
		f["src"] = map[string]any{"eq": filter.Src}
	}
	if filter.Dst != "" {
		f["dst"] = map[string]any{"eq": filter.Dst}
	}
	if filter.Type != nil {
		f["msg_type"] = map[string]any{"eq": int(*filter.Type)}
	}

	data, err := do[struct {
		Messages []tonclient.Message `json:"messages"`
	}](ctx, c, messagesQuery, map[string]any{"filter": f})
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	return data.Messages, nil
}
