package realtime

import "log"

const queueDepth = 64

// Broadcaster decouples event producers from observer delivery: mutations
// push onto a buffered channel and a single consumer goroutine drains it into
// Hub.Broadcast. Persistence latency therefore never scales with observer
// count, and messages published serially are fully attempted in order.
type Broadcaster struct {
	hub   *Hub
	queue chan string
	done  chan struct{}
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	b := &Broadcaster{
		hub:   hub,
		queue: make(chan string, queueDepth),
		done:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// Publish enqueues a message for delivery to all observers. It never blocks:
// when the queue is full the message is dropped and counted. Delivery is
// best-effort by contract.
func (b *Broadcaster) Publish(msg string) {
	select {
	case b.queue <- msg:
	default:
		log.Printf("broadcaster: queue full, dropping message")
		broadcastDropped.Inc()
	}
}

func (b *Broadcaster) loop() {
	defer close(b.done)
	for msg := range b.queue {
		b.hub.Broadcast(msg)
	}
}

// Close stops the consumer after draining queued messages.
func (b *Broadcaster) Close() {
	close(b.queue)
	<-b.done
}
