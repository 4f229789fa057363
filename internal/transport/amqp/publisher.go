package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type dialFunc func(url string) (amqpConnection, error)

type brokerConnection struct {
	*amqp.Connection
}

func (c brokerConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialBroker(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return brokerConnection{conn}, nil
}

// Publisher fans live-session events out to every queue bound to the exchange.
// A dropped channel or connection is redialled on the next publish.
type Publisher struct {
	url      string
	exchange string
	dial     dialFunc

	mu      sync.Mutex
	conn    amqpConnection
	channel amqpChannel
	closed  chan *amqp.Error
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	return newPublisher(amqpURL, exchange, dialBroker)
}

func newPublisher(amqpURL, exchange string, dial dialFunc) (*Publisher, error) {
	if strings.TrimSpace(exchange) == "" {
		return nil, errors.New("amqp: empty exchange name")
	}
	p := &Publisher{url: amqpURL, exchange: exchange, dial: dial}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials, opens a channel and declares the exchange. Caller holds mu
// or owns p exclusively.
func (p *Publisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	p.conn = conn
	p.channel = ch
	p.closed = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// healthy reports whether the current channel can publish. NotifyClose fires
// when either the channel or its connection goes away.
func (p *Publisher) healthy() bool {
	if p.channel == nil {
		return false
	}
	select {
	case <-p.closed:
		return false
	default:
		return true
	}
}

func (p *Publisher) reset() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.channel = nil
	p.conn = nil
	p.closed = nil
}

func (p *Publisher) reconnect() error {
	p.reset()
	if err := p.connect(); err != nil {
		return fmt.Errorf("amqp: reconnect: %w", err)
	}
	return nil
}

func (p *Publisher) PublishLiveSession(ctx context.Context, event domain.LiveSessionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		MessageId:    event.SessionID.String(),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.healthy() {
		if err := p.reconnect(); err != nil {
			return err
		}
	}
	err = p.channel.Publish(p.exchange, string(event.Type), false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		if err := p.reconnect(); err != nil {
			return err
		}
		err = p.channel.Publish(p.exchange, string(event.Type), false, false, msg)
	}
	return err
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

var _ ports.LiveSessionPublisher = (*Publisher)(nil)
