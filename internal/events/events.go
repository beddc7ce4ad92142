// Package events defines domain event envelopes and their Kafka delivery.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/d60-Lab/gymfeed/internal/model"
)

const (
	WorkoutCreated  = "workout.created"
	WorkoutDeleted  = "workout.deleted"
	WorkoutLiked    = "workout.liked"
	WorkoutUnliked  = "workout.unliked"
	CommentCreated  = "comment.created"
	CommentDeleted  = "comment.deleted"
	UserFollowed    = "user.followed"
	UserUnfollowed  = "user.unfollowed"
	UserRegistered  = "user.registered"
	UserDeleted     = "user.deleted"
	headerEventType = "event_type"
	headerEventID   = "event_id"
)

// Envelope is the Kafka message value.
type Envelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        json.RawMessage `json:"data"`
}

// Writer is satisfied by KafkaProducer and LogProducer.
type Writer interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
	Close() error
}

// NewOutbox builds the outbox row for an event; it is persisted in the caller's transaction.
func NewOutbox(eventType, aggregateID string, data any, at time.Time) (*model.Outbox, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &model.Outbox{
		ID:          uuid.NewString(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      model.OutboxPending,
		CreatedAt:   at,
	}, nil
}

// ToMessage converts an outbox row to a Kafka message keyed by aggregate id.
func ToMessage(o *model.Outbox) (kafka.Message, error) {
	env := Envelope{
		ID:          o.ID,
		Type:        o.EventType,
		AggregateID: o.AggregateID,
		OccurredAt:  o.CreatedAt,
		Data:        json.RawMessage(o.Payload),
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(o.AggregateID),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(o.EventType)},
			{Key: headerEventID, Value: []byte(o.ID)},
		},
	}, nil
}

type WorkoutPayload struct {
	WorkoutID string `json:"workoutId"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title,omitempty"`
}

type LikePayload struct {
	WorkoutID string `json:"workoutId"`
	OwnerID   string `json:"ownerId"`
	UserID    string `json:"userId"`
}

type CommentPayload struct {
	CommentID string `json:"commentId"`
	WorkoutID string `json:"workoutId"`
	AuthorID  string `json:"authorId"`
}

type FollowPayload struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}

type UserPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
