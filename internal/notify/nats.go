package notify

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/graph"
	"github.com/taste-memory-kernel/internal/jsonx"
)

// Subjects for kernel events.
const (
	SubjectLearn     = "taste.learn"
	SubjectReinforce = "taste.reinforce"
	SubjectPromoted  = "taste.wisdom.promoted"
)

// NATSPublisher publishes learn and promotion events to NATS. It is a
// best-effort channel: publish failures are logged and swallowed.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("taste-memory-kernel"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger.Named("notify")}, nil
}

func (p *NATSPublisher) publish(subject string, v interface{}) error {
	data, err := jsonx.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// OnLearn publishes a learned node.
func (p *NATSPublisher) OnLearn(node *graph.MemoryNode) error {
	return p.publish(SubjectLearn, node)
}

// OnReinforce publishes a reinforcement.
func (p *NATSPublisher) OnReinforce(nodeID string, node *graph.MemoryNode) error {
	return p.publish(SubjectReinforce, node)
}

// OnPromoted publishes an accepted global pattern. Used as a pipeline
// subscriber; the pipeline catches and logs any error.
func (p *NATSPublisher) OnPromoted(event PromotionEvent) {
	if err := p.publish(SubjectPromoted, event); err != nil {
		p.logger.Warn("failed to publish promotion event",
			zap.String("pattern", event.PatternID), zap.Error(err))
	}
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("nats drain failed", zap.Error(err))
	}
}
