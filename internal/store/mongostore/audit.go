package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authkit/pkg/audit"
)

var (
	_ audit.Storage      = (*Store)(nil)
	_ audit.BatchStorage = (*Store)(nil)
	_ audit.Reader       = (*Store)(nil)
)

type auditDoc struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Action    string         `bson:"action"`
	Result    string         `bson:"result"`
	Reason    string         `bson:"reason,omitempty"`
	RequestID string         `bson:"request_id,omitempty"`
	IP        string         `bson:"ip,omitempty"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

func toAuditDoc(e audit.Event) auditDoc {
	return auditDoc{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Result:    string(e.Result),
		Reason:    e.Reason,
		RequestID: e.RequestID,
		IP:        e.IP,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

func (d auditDoc) event() audit.Event {
	return audit.Event{
		ID:        d.ID,
		UserID:    d.UserID,
		Action:    d.Action,
		Result:    audit.Result(d.Result),
		Reason:    d.Reason,
		RequestID: d.RequestID,
		IP:        d.IP,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (s *Store) Store(ctx context.Context, e audit.Event) error {
	_, err := s.auditEvents.InsertOne(ctx, toAuditDoc(e))
	return err
}

func (s *Store) StoreBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, len(events))
	for i, e := range events {
		docs[i] = toAuditDoc(e)
	}
	_, err := s.auditEvents.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

func (s *Store) FindEvents(ctx context.Context, c audit.Criteria) ([]audit.Event, error) {
	c = c.Normalize()

	filter := bson.M{"user_id": c.UserID}
	if c.Action != "" {
		filter["action"] = c.Action
	}
	if !c.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": c.Since}
	}

	cur, err := s.auditEvents.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(c.Limit)))
	if err != nil {
		return nil, err
	}

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]audit.Event, len(docs))
	for i, d := range docs {
		events[i] = d.event()
	}
	return events, nil
}
