package overlay

import (
	"context"
	"testing"
)

type recordingSubscribeClient struct {
	subscribed   []string
	unsubscribed []string
}

func (c *recordingSubscribeClient) Publish(ctx context.Context, raw []byte) error { return nil }
func (c *recordingSubscribeClient) Subscribe(ctx context.Context, subID string, filterJSON []byte) error {
	c.subscribed = append(c.subscribed, subID)
	return nil
}
func (c *recordingSubscribeClient) Unsubscribe(subID string) error {
	c.unsubscribed = append(c.unsubscribed, subID)
	return nil
}
func (c *recordingSubscribeClient) Close() error { return nil }

func TestSubscribeGeohashGeneratesDistinctIDs(t *testing.T) {
	subs := NewSubscriptions(0)
	client := &recordingSubscribeClient{}

	id1, err := subs.SubscribeGeohash(context.Background(), "9q8", client, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := subs.SubscribeGeohash(context.Background(), "9q8", client, []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id1 == id2 {
		t.Fatalf("expected distinct subscription ids, got %q twice", id1)
	}
	if subs.Active() != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", subs.Active())
	}
}

func TestUnsubscribeGeohashClosesAllMatching(t *testing.T) {
	subs := NewSubscriptions(0)
	client := &recordingSubscribeClient{}

	subs.SubscribeGeohash(context.Background(), "9q8", client, []byte(`{}`))
	subs.SubscribeGeohash(context.Background(), "9q8", client, []byte(`{}`))
	subs.SubscribeGeohash(context.Background(), "other", client, []byte(`{}`))

	subs.UnsubscribeGeohash("9q8")

	if subs.Active() != 1 {
		t.Fatalf("expected 1 remaining subscription after closing 9q8, got %d", subs.Active())
	}
	if len(client.unsubscribed) != 2 {
		t.Fatalf("expected 2 unsubscribe calls, got %d", len(client.unsubscribed))
	}
}

func TestAcceptEventDropsReplays(t *testing.T) {
	subs := NewSubscriptions(0)

	if !subs.AcceptEvent("abc") {
		t.Fatalf("expected first delivery of an id to be accepted")
	}
	if subs.AcceptEvent("abc") {
		t.Fatalf("expected replay of the same id to be rejected")
	}
}
