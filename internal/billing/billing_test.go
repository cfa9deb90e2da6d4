package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
	"github.com/iliyamo/revalidation-api/internal/queue"
	"github.com/iliyamo/revalidation-api/internal/repository"
)

const testSecret = "whsec_test"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignHeader(payload, testSecret, fixedNow)

	assert.NoError(t, VerifySignature(payload, header, testSecret, fixedNow.Add(time.Minute), DefaultTolerance))
	assert.ErrorIs(t, VerifySignature(payload, header, "other", fixedNow, DefaultTolerance), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature([]byte(`{"id":"evt_2"}`), header, testSecret, fixedNow, DefaultTolerance), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(payload, header, testSecret, fixedNow.Add(6*time.Minute), DefaultTolerance), ErrTimestampExpired)
	assert.ErrorIs(t, VerifySignature(payload, "", testSecret, fixedNow, DefaultTolerance), ErrMissingSignature)
	assert.ErrorIs(t, VerifySignature(payload, "t=abc,v1=00", testSecret, fixedNow, DefaultTolerance), ErrMissingSignature)

	// a rotated secret produces a second v1 entry
	rotated := header + ",v1=" + SignHeader(payload, "old", fixedNow)[len("t=1717243200,v1="):]
	assert.NoError(t, VerifySignature(payload, rotated, testSecret, fixedNow, DefaultTolerance))
}

func TestMapEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want codec.LegacyPatch
		cust string
	}{
		{
			name: "subscription updated with provider-only status",
			body: `{"id":"evt_1","type":"customer.subscription.updated","data":{"object":{
				"id":"sub_9","customer":"cus_1","status":"incomplete","current_period_end":1717243200,
				"metadata":{"tier":"premium"}}}}`,
			want: codec.LegacyPatch{
				codec.ColSubscriptionStatus:   "incomplete",
				codec.ColSubscriptionTier:     "premium",
				codec.ColSubscriptionEndDate:  fixedNow,
				codec.ColStripeSubscriptionID: "sub_9",
			},
			cust: "cus_1",
		},
		{
			name: "subscription deleted with expanded customer",
			body: `{"id":"evt_2","type":"customer.subscription.deleted","data":{"object":{"id":"sub_9","customer":{"id":"cus_2"}}}}`,
			want: codec.LegacyPatch{codec.ColSubscriptionStatus: "cancelled", codec.ColSubscriptionTier: "free"},
			cust: "cus_2",
		},
		{
			name: "payment failed",
			body: `{"id":"evt_3","type":"invoice.payment_failed","data":{"object":{"id":"in_1","customer":"cus_3"}}}`,
			want: codec.LegacyPatch{codec.ColSubscriptionStatus: "past_due"},
			cust: "cus_3",
		},
		{
			name: "payment succeeded",
			body: `{"id":"evt_4","type":"invoice.payment_succeeded","data":{"object":{"id":"in_2","customer":"cus_3"}}}`,
			want: codec.LegacyPatch{codec.ColSubscriptionStatus: "active"},
			cust: "cus_3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.body))
			require.NoError(t, err)
			change, ok, err := MapEvent(ev)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.cust, change.CustomerID)
			assert.Equal(t, tt.want, change.Columns)
		})
	}

	ev, err := ParseEvent([]byte(`{"id":"evt_5","type":"charge.refunded","data":{"object":{}}}`))
	require.NoError(t, err)
	_, ok, err := MapEvent(ev)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ParseEvent([]byte(`{"type":"invoice.payment_failed"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

type fakeUsers struct{ byCustomer map[string]int64 }

func (f *fakeUsers) GetByStripeCustomer(_ context.Context, id string) (*model.User, error) {
	uid, ok := f.byCustomer[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.User{ID: uid}, nil
}

type fakeWriter struct {
	calls []codec.LegacyPatch
	err   error
}

func (f *fakeWriter) Update(_ context.Context, id any, cols codec.LegacyPatch, _ bool) (*model.User, error) {
	f.calls = append(f.calls, cols)
	if f.err != nil {
		return nil, f.err
	}
	u := &model.User{ID: id.(int64), SubscriptionTier: "free"}
	if s, ok := cols[codec.ColSubscriptionStatus].(string); ok {
		u.SubscriptionStatus = s
	}
	return u, nil
}

type fakePublisher struct{ events []queue.SubscriptionChangedEvent }

func (f *fakePublisher) PublishSubscriptionChanged(_ context.Context, ev queue.SubscriptionChangedEvent) error {
	f.events = append(f.events, ev)
	return errors.New("broker down")
}

func newProcessor(w *fakeWriter, pub *fakePublisher) *Processor {
	return &Processor{
		Secret:    testSecret,
		Users:     &fakeUsers{byCustomer: map[string]int64{"cus_1": 7}},
		Writer:    w,
		Publisher: pub,
		Now:       func() time.Time { return fixedNow },
	}
}

func TestProcessorAppliesAndPublishes(t *testing.T) {
	w, pub := &fakeWriter{}, &fakePublisher{}
	p := newProcessor(w, pub)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{"customer":"cus_1"}}}`)

	out, err := p.Handle(context.Background(), payload, SignHeader(payload, testSecret, fixedNow))
	require.NoError(t, err, "a failing publisher does not fail the delivery")
	assert.Equal(t, OutcomeApplied, out)
	require.Len(t, w.calls, 1)
	assert.Equal(t, "past_due", w.calls[0][codec.ColSubscriptionStatus])
	assert.Contains(t, w.calls[0], codec.ColUpdatedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(7), pub.events[0].UserID)
	assert.Equal(t, "past_due", pub.events[0].SubscriptionStatus)
	assert.Equal(t, "evt_1", pub.events[0].EventID)
}

func TestProcessorIgnoresUnknownCustomerAndType(t *testing.T) {
	w := &fakeWriter{}
	p := newProcessor(w, nil)

	unknown := []byte(`{"id":"evt_2","type":"invoice.payment_failed","data":{"object":{"customer":"cus_404"}}}`)
	out, err := p.Handle(context.Background(), unknown, SignHeader(unknown, testSecret, fixedNow))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)

	other := []byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{"customer":"cus_1"}}}`)
	out, err = p.Handle(context.Background(), other, SignHeader(other, testSecret, fixedNow))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)
	assert.Empty(t, w.calls)
}

func TestProcessorRejectsBadSignature(t *testing.T) {
	w := &fakeWriter{}
	p := newProcessor(w, nil)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{"customer":"cus_1"}}}`)

	_, err := p.Handle(context.Background(), payload, SignHeader(payload, "wrong", fixedNow))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, w.calls)
}

func TestProcessorPropagatesWriteErrors(t *testing.T) {
	boom := errors.New("connection refused")
	p := newProcessor(&fakeWriter{err: boom}, nil)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{"customer":"cus_1"}}}`)

	_, err := p.Handle(context.Background(), payload, SignHeader(payload, testSecret, fixedNow))
	assert.ErrorIs(t, err, boom)
}

func TestDeduperWithoutRedis(t *testing.T) {
	d := NewDeduper(nil)
	fresh, err := d.Claim(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, fresh)
	fresh, err = d.Claim(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.NoError(t, d.Release(context.Background(), "evt_1"))
}
