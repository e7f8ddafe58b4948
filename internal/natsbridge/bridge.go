// Package natsbridge exposes the protocol over NATS. Request messages
// arrive as JSON envelopes on per-operation subjects and are answered
// via request-reply; progress notes are broadcast on a progress
// subject so any interested consumer can follow a running operation.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/fontsweep/internal/errors"
	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

// Envelope is the wire frame for every message crossing the bridge.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a protocol message in an envelope and marshals it.
func Encode(m protocol.Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", m.Type(), err)
	}
	return json.Marshal(Envelope{Type: m.Type(), Payload: payload})
}

// Connect dials the NATS server with retries.
func Connect(url string) (*nats.Conn, error) {
	var conn *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			conn, err = nats.Connect(url,
				nats.Name("fontsweep"),
				nats.MaxReconnects(-1),
				nats.ReconnectWait(2*time.Second),
			)
			return err
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.TransportError(err, fmt.Sprintf("failed to connect to NATS at %s", url))
	}
	slog.Info("connected to NATS", "url", url)
	return conn, nil
}

// Bridge subscribes the service to NATS subjects.
type Bridge struct {
	conn    *nats.Conn
	service *protocol.Service
	prefix  string
	subs    []*nats.Subscription
}

// NewBridge creates a bridge over an established connection.
func NewBridge(conn *nats.Conn, service *protocol.Service, subjectPrefix string) *Bridge {
	return &Bridge{conn: conn, service: service, prefix: subjectPrefix}
}

func (b *Bridge) subject(op string) string {
	return b.prefix + "." + op
}

// ProgressSubject is where progress notes for an operation are
// broadcast.
func (b *Bridge) ProgressSubject(operationID string) string {
	return b.subject("progress") + "." + operationID
}

// Start subscribes to the request subjects and begins forwarding
// progress notes from the in-process bus.
func (b *Bridge) Start() error {
	requests := map[string]string{
		"scan":         protocol.TypeScanFonts,
		"replace":      protocol.TypeReplaceFonts,
		"select":       protocol.TypeSelectFont,
		"style.create": protocol.TypeCreateTextStyle,
		"style.apply":  protocol.TypeApplyTextStyle,
	}
	for op, msgType := range requests {
		subject := b.subject(op)
		expected := msgType
		sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
			reply := b.Dispatch(context.Background(), expected, msg.Data)
			if msg.Reply == "" {
				return
			}
			if err := msg.Respond(reply); err != nil {
				slog.Warn("failed to send reply", "subject", subject, "error", err)
			}
		})
		if err != nil {
			b.Close()
			return errors.TransportError(err, fmt.Sprintf("failed to subscribe to %s", subject))
		}
		b.subs = append(b.subs, sub)
	}

	b.service.Bus().Subscribe(protocol.TypeProgress, func(m protocol.Message) error {
		note, ok := m.(protocol.ProgressNote)
		if !ok {
			return nil
		}
		data, err := Encode(note)
		if err != nil {
			return nil
		}
		if err := b.conn.Publish(b.ProgressSubject(note.OperationID), data); err != nil {
			slog.Warn("failed to broadcast progress", "operation", note.OperationID, "error", err)
		}
		return nil
	})

	slog.Info("NATS bridge started", "prefix", b.prefix)
	return nil
}

// Dispatch decodes a request envelope, runs the operation and encodes
// the reply. Failures always produce an error envelope, never a
// missing reply.
func (b *Bridge) Dispatch(ctx context.Context, msgType string, data []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errorReply(msgType, fmt.Errorf("malformed envelope: %w", err))
	}
	if env.Type != "" && env.Type != msgType {
		return errorReply(msgType, fmt.Errorf("unexpected message type %q on %s subject", env.Type, msgType))
	}

	var (
		result protocol.Message
		err    error
	)
	switch msgType {
	case protocol.TypeScanFonts:
		var req protocol.ScanFonts
		if err = json.Unmarshal(env.Payload, &req); err == nil {
			result, err = b.service.Scan(ctx, req.Scope)
		}
	case protocol.TypeReplaceFonts:
		var req protocol.ReplaceFonts
		if err = json.Unmarshal(env.Payload, &req); err == nil {
			result, err = b.service.Replace(ctx, req.Scope, req.Mappings)
		}
	case protocol.TypeSelectFont:
		var req protocol.SelectFont
		if err = json.Unmarshal(env.Payload, &req); err == nil {
			result, err = b.service.SelectFont(ctx, req.Family, req.Style, req.Scope)
		}
	case protocol.TypeCreateTextStyle:
		var req protocol.CreateTextStyle
		if err = json.Unmarshal(env.Payload, &req); err == nil {
			result, err = b.service.CreateStyle(ctx, req)
		}
	case protocol.TypeApplyTextStyle:
		var req protocol.ApplyTextStyle
		if err = json.Unmarshal(env.Payload, &req); err == nil {
			result, err = b.service.ApplyStyle(ctx, req)
		}
	default:
		err = fmt.Errorf("unknown message type %q", msgType)
	}
	if err != nil {
		return errorReply(msgType, err)
	}

	reply, err := Encode(result)
	if err != nil {
		return errorReply(msgType, err)
	}
	return reply
}

func errorReply(requestType string, err error) []byte {
	var m protocol.Message
	switch requestType {
	case protocol.TypeReplaceFonts:
		m = protocol.ReplaceError{Error: err.Error()}
	case protocol.TypeCreateTextStyle, protocol.TypeApplyTextStyle:
		m = protocol.StyleError{Error: err.Error()}
	default:
		m = protocol.ScanError{Error: err.Error()}
	}
	data, encodeErr := Encode(m)
	if encodeErr != nil {
		return []byte(`{"type":"scan-error","payload":{"error":"internal encoding failure"}}`)
	}
	return data
}

// Close drains the subscriptions. The connection is left to the owner.
func (b *Bridge) Close() {
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
}
