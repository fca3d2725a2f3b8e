package sink

import (
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// Topic prefixes subscribers can filter on.
const (
	TopicInteraction = "interaction:"
	TopicEvent       = "event:"
	TopicSnapshot    = "snapshot:"
)

// Publisher mirrors run records onto a PUB socket. Delivery is best effort:
// messages sent before a subscriber connects are lost.
type Publisher struct {
	sock mangos.Socket
	url  string
}

// NewPublisher listens on url (for example tcp://*:9190 or inproc://run).
func NewPublisher(url string) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(url); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket to %s: %w", url, err)
	}
	return &Publisher{sock: sock, url: url}, nil
}

// URL returns the address the publisher listens on.
func (p *Publisher) URL() string {
	return p.url
}

func (p *Publisher) WriteInteraction(i Interaction) error {
	return p.send(TopicInteraction + i.String())
}

func (p *Publisher) WriteEvent(e EventEntry) error {
	return p.send(TopicEvent + e.String())
}

// WriteSnapshot publishes a summary line: iteration, community count and
// edge count.
func (p *Publisher) WriteSnapshot(s Snapshot) error {
	return p.send(fmt.Sprintf("%s%d\t%d\t%d", TopicSnapshot, s.Iteration, len(s.Communities), len(s.Edges)))
}

func (p *Publisher) Flush() error {
	return nil
}

func (p *Publisher) Close() error {
	return p.sock.Close()
}

func (p *Publisher) send(msg string) error {
	if err := p.sock.Send([]byte(msg)); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
