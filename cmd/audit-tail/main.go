// Package main prints the audit trail, one event per line. The default mode
// tails the audit topic live; -recent and -subject instead query the
// persisted trail in Postgres and exit, for looking back past the topic's
// retention.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"pactum/internal/platform/database"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/audit"
	auditpostgres "pactum/pkg/platform/audit/store/postgres"
)

func main() {
	brokers := flag.String("brokers", envOr("PACTUM_KAFKA_BROKERS", "localhost:9092"), "Comma-separated Kafka brokers")
	topic := flag.String("topic", envOr("PACTUM_AUDIT_TOPIC", "pactum.audit.events"), "Audit topic to tail")
	fromBeginning := flag.Bool("from-beginning", false, "Replay the topic from the earliest offset")
	rawJSON := flag.Bool("json", false, "Print raw event payloads instead of formatted lines")
	databaseURL := flag.String("database", os.Getenv("PACTUM_DATABASE_URL"), "Postgres URL for query mode")
	recent := flag.Int("recent", 0, "Query mode: print the N most recent persisted events and exit")
	subject := flag.String("subject", "", "Query mode: print the persisted events for a subject ID and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recent > 0 || *subject != "" {
		os.Exit(runQuery(ctx, *databaseURL, *recent, *subject, *rawJSON))
	}

	resetOffset := kgo.NewOffset().AtEnd()
	if *fromBeginning {
		resetOffset = kgo.NewOffset().AtStart()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(*brokers, ",")...),
		kgo.ConsumeTopics(*topic),
		kgo.ConsumeResetOffset(resetOffset),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Kafka: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Fprintf(os.Stderr, "tailing %s on %s (Ctrl+C to stop)\n", *topic, *brokers)

	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}
		for _, fetchErr := range fetches.Errors() {
			fmt.Fprintf(os.Stderr, "fetch error on %s/%d: %v\n", fetchErr.Topic, fetchErr.Partition, fetchErr.Err)
		}
		fetches.EachRecord(func(rec *kgo.Record) {
			printRecord(rec, *rawJSON)
		})
	}
}

// runQuery reads the persisted trail straight from the audit store, newest
// first, and returns the process exit code.
func runQuery(ctx context.Context, databaseURL string, recent int, subject string, rawJSON bool) int {
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "query mode needs -database or PACTUM_DATABASE_URL")
		return 1
	}

	cfg := database.DefaultConfig()
	cfg.URL = databaseURL
	pool, err := database.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Postgres: %v\n", err)
		return 1
	}
	defer pool.Close()
	store := auditpostgres.New(pool.DB())

	var events []audit.Event
	if subject != "" {
		subjectID, perr := id.ParseSubjectID(subject)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid subject ID %q: %v\n", subject, perr)
			return 1
		}
		events, err = store.ListBySubject(ctx, subjectID)
	} else {
		events, err = store.ListRecent(ctx, recent)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying audit trail: %v\n", err)
		return 1
	}

	for _, ev := range events {
		printEvent(ev, rawJSON)
	}
	return 0
}

// event mirrors the payload the outbox worker publishes.
type event struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	SubjectID string `json:"SubjectID"`
	Subject   string `json:"Subject"`
	Action    string `json:"Action"`
	Decision  string `json:"Decision"`
	Reason    string `json:"Reason"`
	RequestID string `json:"RequestID"`
	ActorID   string `json:"ActorID"`
	Client    string `json:"Client"`
}

func printRecord(rec *kgo.Record, rawJSON bool) {
	if rawJSON {
		fmt.Printf("%s\n", rec.Value)
		return
	}

	var ev event
	if err := json.Unmarshal(rec.Value, &ev); err != nil {
		fmt.Printf("? offset=%d (unparseable: %v)\n", rec.Offset, err)
		return
	}
	fmt.Println(formatLine(ev))
}

func printEvent(stored audit.Event, rawJSON bool) {
	if rawJSON {
		payload, err := json.Marshal(stored)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding event: %v\n", err)
			return
		}
		fmt.Printf("%s\n", payload)
		return
	}

	fmt.Println(formatLine(toWireEvent(stored)))
}

// toWireEvent renders a persisted event in the shape the topic carries, so
// both modes print identical lines.
func toWireEvent(stored audit.Event) event {
	ev := event{
		Category:  string(stored.Category),
		Timestamp: stored.Timestamp.UTC().Format(time.RFC3339),
		Subject:   stored.Subject,
		Action:    stored.Action,
		Decision:  stored.Decision,
		Reason:    stored.Reason,
		RequestID: stored.RequestID,
		ActorID:   stored.ActorID,
		Client:    stored.Client,
	}
	if !stored.SubjectID.IsNil() {
		ev.SubjectID = stored.SubjectID.String()
	}
	return ev
}

func formatLine(ev event) string {
	line := fmt.Sprintf("%s  %-10s  %-28s", ev.Timestamp, ev.Category, ev.Action)
	if ev.Decision != "" {
		line += "  decision=" + ev.Decision
	}
	if ev.Reason != "" {
		line += "  reason=" + ev.Reason
	}
	if ev.SubjectID != "" {
		line += "  subject=" + ev.SubjectID
	} else if ev.Subject != "" {
		line += "  subject=" + ev.Subject
	}
	if ev.ActorID != "" {
		line += "  actor=" + ev.ActorID
	}
	if ev.Client != "" {
		line += "  client=" + strconv.Quote(ev.Client)
	}
	return line
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
