package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	seqkafka "github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/kafka"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/validator"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
)

type generator struct {
	market    string
	makers    []string
	nonces    map[string]int64
	basePrice int64
	spread    int64
	signer    *validator.HMACVerifier
}

// intent creates a signed order around the base price. Bids sit below it and
// asks above, with a quarter of the flow crossing the spread.
func (g *generator) intent() *orderv1.Intent {
	maker := g.makers[rand.Intn(len(g.makers))]
	g.nonces[maker]++

	side := orderv1.SideBuy
	if rand.Float64() < 0.5 {
		side = orderv1.SideSell
	}

	offset := rand.Int63n(g.spread + 1)
	if rand.Float64() < 0.25 {
		offset = -offset
	}
	price := g.basePrice - offset
	if side == orderv1.SideSell {
		price = g.basePrice + offset
	}
	if price <= 0 {
		price = 1
	}

	tif := orderv1.GTC
	switch r := rand.Float64(); {
	case r < 0.1:
		tif = orderv1.IOC
	case r < 0.15:
		tif = orderv1.FOK
	}

	in := &orderv1.Intent{
		OrderID:     ulid.Make().String(),
		MarketID:    g.market,
		Maker:       maker,
		Side:        side,
		PriceTicks:  price,
		Qty:         rand.Int63n(50) + 1,
		TimeInForce: tif,
		Nonce:       g.nonces[maker],
		Signature:   "unsigned",
	}
	if g.signer != nil {
		in.Signature = g.signer.Sign(in.ToOrder(0))
	}
	return in
}

// firstPartition keeps every record on partition 0, where the sequencer reads.
func firstPartition(_ kafka.Message, partitions ...int) int {
	return partitions[0]
}

func main() {
	var (
		brokers       = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		prefix        = flag.String("topic-prefix", "clob.market.", "Consensus topic prefix")
		market        = flag.String("market", "m1", "Market to submit to")
		file          = flag.String("file", "", "JSON file with intents (optional, generates intents if not provided)")
		delay         = flag.Duration("delay", 100*time.Millisecond, "Delay between messages")
		count         = flag.Int("count", 1000, "Number of intents to generate")
		makers        = flag.Int("makers", 10, "Number of distinct makers")
		basePrice     = flag.Int64("base-price", 50, "Base price in ticks")
		spread        = flag.Int64("price-spread", 10, "Price spread in ticks")
		chunkSize     = flag.Int("chunk-size", 1024, "Maximum envelope chunk size in bytes")
		boundaryEvery = flag.Int("boundary-every", 0, "Send a batch boundary after this many intents (0 = never)")
		secret        = flag.String("secret", "", "HMAC secret used to sign intents")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Balancer:     kafka.BalancerFunc(firstPartition),
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()

	ctx := context.Background()

	var intents []*orderv1.Intent
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &intents); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d intents from file: %s", len(intents), *file)
	} else {
		g := &generator{
			market:    *market,
			nonces:    make(map[string]int64),
			basePrice: *basePrice,
			spread:    *spread,
		}
		for i := 0; i < *makers; i++ {
			g.makers = append(g.makers, "maker-"+ulid.Make().String()[20:])
		}
		if *secret != "" {
			g.signer = validator.NewHMACVerifier(*secret)
		}
		for i := 0; i < *count; i++ {
			intents = append(intents, g.intent())
		}
		log.Printf("Generated %d intents", len(intents))
	}

	send := func(payload *consensusv1.Payload) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		records, err := seqkafka.Encode(*prefix, payload.MarketID, ulid.Make().String(), data, *chunkSize)
		if err != nil {
			return err
		}
		msgs := make([]kafka.Message, len(records))
		for i, r := range records {
			msgs[i] = kafka.Message{Topic: r.Topic, Key: []byte(r.Key), Value: r.Value, Time: time.Now()}
		}
		return writer.WriteMessages(ctx, msgs...)
	}

	log.Printf("Sending intents to Kafka broker: %s, market: %s", *brokers, *market)

	var buys, sells, failed, boundaries int
	for i, in := range intents {
		if err := send(&consensusv1.Payload{Type: consensusv1.PayloadOrder, MarketID: in.MarketID, Order: in}); err != nil {
			log.Printf("Failed to send intent %d (%s): %v", i+1, in.OrderID, err)
			failed++
			continue
		}
		if in.Side == orderv1.SideBuy {
			buys++
		} else {
			sells++
		}

		if *boundaryEvery > 0 && (i+1)%*boundaryEvery == 0 {
			boundary := &consensusv1.Payload{Type: consensusv1.PayloadBatchBoundary, MarketID: in.MarketID, Boundary: &consensusv1.Boundary{Reason: "loadgen"}}
			if err := send(boundary); err != nil {
				log.Printf("Failed to send boundary after intent %d: %v", i+1, err)
			} else {
				boundaries++
			}
		}

		if (i+1)%100 == 0 || i == len(intents)-1 {
			log.Printf("Sent intent %d/%d: %s | %s | %s %d@%d %s",
				i+1, len(intents), in.OrderID, in.Maker, in.Side, in.Qty, in.PriceTicks, in.TimeInForce)
		}

		if i < len(intents)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Intents: %d", len(intents))
	log.Printf("Buy Intents: %d", buys)
	log.Printf("Sell Intents: %d", sells)
	log.Printf("Failed: %d", failed)
	log.Printf("Batch Boundaries: %d", boundaries)
}
