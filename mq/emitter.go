package mq

import (
	"context"
	"encoding/json"
	"log"

	"vitrine/models"
	"vitrine/rdx"
)

const stockChannel = "stock-updates"

// Emitter publishes stock changes to Redis so every running instance can
// forward them to its own websocket clients.
type Emitter struct{}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// StockChanged satisfies the stock notifier. Publish failures are logged;
// a missed notification must never fail the inventory write.
func (e *Emitter) StockChanged(productID string, newStock int) {
	update := models.StockUpdate{
		Type:      "stock_update",
		ProductID: productID,
		Stock:     newStock,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("marshal stock update:", err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), stockChannel, data).Err(); err != nil {
		log.Println("publish stock update:", err)
	}
}

// Broadcaster is the local fan-out target for updates arriving off the
// channel, implemented by the websocket manager.
type Broadcaster interface {
	BroadcastStockUpdate(update models.StockUpdate)
}

// StartStockWorker subscribes to the stock channel and forwards each
// update to the local broadcaster until ctx is cancelled.
func StartStockWorker(ctx context.Context, b Broadcaster) {
	sub := rdx.Conn.Subscribe(ctx, stockChannel)
	ch := sub.Channel()

	log.Println("stock worker listening on", stockChannel)
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var update models.StockUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					log.Println("parse stock update:", err)
					continue
				}
				b.BroadcastStockUpdate(update)
			}
		}
	}()
}
