package contract

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const decodeConcurrency = 8

// DecodedMessage is a message body decoded with the contract ABI.
type DecodedMessage struct {
	tonclient.DecodedMessageBody
	ID  string
	Src string
}

// DecodeMessages decodes the bodies of msgs with the contract ABI. The result preserves the order
// of msgs.
func (c *Contract) DecodeMessages(ctx context.Context, msgs []tonclient.Message, internal bool) ([]DecodedMessage, error) {
	decoded := make([]DecodedMessage, len(msgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeConcurrency)
	for i, msg := range msgs {
		g.Go(func() error {
			body, err := c.session.client.DecodeMessageBody(gctx, tonclient.DecodeMessageBodyParams{
				Abi:        tonclient.ContractAbi(c.abi),
				Body:       msg.Body,
				IsInternal: internal,
			})
			if err != nil {
				return fmt.Errorf("failed to decode message %s: %w", msg.ID, err)
			}
			decoded[i] = DecodedMessage{DecodedMessageBody: body, ID: msg.ID, Src: msg.Src}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return decoded, nil
}

// SentMessages returns the decoded messages of type typ sent by the contract.
func (c *Contract) SentMessages(ctx context.Context, typ tonclient.MessageType, internal bool) ([]DecodedMessage, error) {
	address, err := c.deployedAddress()
	if err != nil {
		return nil, err
	}

	return c.queryAndDecode(ctx, tonclient.MessageFilter{Src: address, Type: &typ}, internal)
}

// ReceivedMessages returns the decoded messages of type typ received by the contract.
func (c *Contract) ReceivedMessages(ctx context.Context, typ tonclient.MessageType, internal bool) ([]DecodedMessage, error) {
	address, err := c.deployedAddress()
	if err != nil {
		return nil, err
	}

	return c.queryAndDecode(ctx, tonclient.MessageFilter{Dst: address, Type: &typ}, internal)
}

// Events returns the emitted events named name.
func (c *Contract) Events(ctx context.Context, name string) ([]DecodedMessage, error) {
	sent, err := c.SentMessages(ctx, tonclient.MessageExtOut, false)
	if err != nil {
		return nil, err
	}

	var events []DecodedMessage
	for _, msg := range sent {
		if msg.Name == name {
			events = append(events, msg)
		}
	}

	return events, nil
}

func (c *Contract) queryAndDecode(ctx context.Context, filter tonclient.MessageFilter, internal bool) ([]DecodedMessage, error) {
	msgs, err := c.session.client.QueryMessages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages of %s: %w", c.name, err)
	}

	return c.DecodeMessages(ctx, msgs, internal)
}
