// Package console is a development MessagingGateway that prints messages
// instead of sending them.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/MrEthical07/phoneverify"
	"github.com/google/uuid"
)

type Gateway struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a gateway writing to w, or os.Stdout when w is nil.
func New(w io.Writer) *Gateway {
	if w == nil {
		w = os.Stdout
	}
	return &Gateway{w: w}
}

func (g *Gateway) LookupCarrier(context.Context, string) (phoneverify.CarrierInfo, error) {
	return phoneverify.CarrierInfo{Name: "console", Type: "mobile"}, nil
}

func (g *Gateway) Send(ctx context.Context, msg phoneverify.Message) (*phoneverify.DeliveryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &phoneverify.DeliveryReceipt{
		SID:         "CN" + uuid.NewString(),
		Provider:    "console",
		Status:      "delivered",
		To:          msg.To,
		From:        msg.From,
		Body:        msg.Body,
		DateCreated: time.Now().UTC(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := fmt.Fprintf(g.w, "[%s] %s -> %s: %s\n", msg.Channel, msg.From, msg.To, msg.Body); err != nil {
		return nil, err
	}
	return receipt, nil
}

var _ phoneverify.MessagingGateway = (*Gateway)(nil)
