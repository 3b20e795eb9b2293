package features

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/meridian-systems/corebus/bus"
	"github.com/meridian-systems/corebus/clock"
	"github.com/meridian-systems/corebus/config"
	"github.com/meridian-systems/corebus/ids"
)

// BusBDDTestContext holds state shared across a single scenario's steps.
type BusBDDTestContext struct {
	bus          *bus.Bus
	counts       map[string]int
	order        []string
	responseHits int
	pendingID    ids.UUID4
}

func (tc *BusBDDTestContext) reset() {
	tc.bus = nil
	tc.counts = make(map[string]int)
	tc.order = nil
	tc.responseHits = 0
}

func (tc *BusBDDTestContext) aMessageBus() error {
	tc.reset()
	b, err := bus.New("bdd.source", clock.NewTestClock("bdd"), config.DefaultBusConfig())
	tc.bus = b
	return err
}

func (tc *BusBDDTestContext) aSubscriberOnPattern(name, pattern string) error {
	return tc.bus.Subscribe(pattern, 0, func(any) { tc.counts[name]++ })
}

func (tc *BusBDDTestContext) aPrioritySubscriberWithPriorityOnTopic(name string, priority int, topic string) error {
	return tc.bus.Subscribe(topic, priority, func(any) { tc.order = append(tc.order, name) })
}

func (tc *BusBDDTestContext) iPublishToTopic(payload, topic string) error {
	tc.bus.Publish(context.Background(), topic, payload, false)
	return nil
}

func (tc *BusBDDTestContext) subscriberReceivedMessages(name string, want int) error {
	if tc.counts[name] != want {
		return fmt.Errorf("subscriber %s: expected %d messages, got %d", name, want, tc.counts[name])
	}
	return nil
}

func (tc *BusBDDTestContext) theDeliveryOrderIs(csv string) error {
	want := strings.Split(csv, ",")
	if len(want) != len(tc.order) {
		return fmt.Errorf("expected order %v, got %v", want, tc.order)
	}
	for i, w := range want {
		if tc.order[i] != w {
			return fmt.Errorf("expected order %v, got %v", want, tc.order)
		}
	}
	return nil
}

func (tc *BusBDDTestContext) anEndpointThatEchoesAResponse(name string) error {
	return tc.bus.RegisterEndpoint(name, func(msg any) {
		id := msg.(ids.UUID4)
		tc.bus.Response(bus.Response{CorrelationID: id, Payload: "ok"})
	})
}

func (tc *BusBDDTestContext) iSendARequestToAndWaitForAResponse(endpoint string) error {
	id := ids.NewUUID4()
	tc.pendingID = id
	tc.bus.Request(endpoint, bus.Request{
		ID:      id,
		Payload: id,
		Callback: func(bus.Response) {
			tc.responseHits++
		},
	})
	return nil
}

func (tc *BusBDDTestContext) theResponseCallbackWasInvokedExactlyTimes(want int) error {
	if tc.responseHits != want {
		return fmt.Errorf("expected %d response callback invocations, got %d", want, tc.responseHits)
	}
	return nil
}

func (tc *BusBDDTestContext) thePendingRequestIsNoLongerPending() error {
	if tc.bus.IsPendingRequest(tc.pendingID) {
		return fmt.Errorf("request %s is still pending", tc.pendingID)
	}
	return nil
}

func (tc *BusBDDTestContext) iRespondAgainWithTheSameCorrelationID() error {
	tc.bus.Response(bus.Response{CorrelationID: tc.pendingID, Payload: "duplicate"})
	return nil
}

func (tc *BusBDDTestContext) theResponseCounterIs(want int) error {
	got := int(tc.bus.Counters().Responses)
	if got != want {
		return fmt.Errorf("expected response counter %d, got %d", want, got)
	}
	return nil
}

func TestBusBDD(t *testing.T) {
	tc := &BusBDDTestContext{}

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Given(`^a message bus$`, tc.aMessageBus)
			sc.Given(`^a subscriber "([^"]*)" on pattern "([^"]*)"$`, tc.aSubscriberOnPattern)
			sc.Given(`^a priority subscriber "([^"]*)" with priority (\d+) on topic "([^"]*)"$`, tc.aPrioritySubscriberWithPriorityOnTopic)
			sc.Given(`^an endpoint "([^"]*)" that echoes a response$`, tc.anEndpointThatEchoesAResponse)
			sc.When(`^I publish "([^"]*)" to topic "([^"]*)"$`, tc.iPublishToTopic)
			sc.When(`^I send a request to "([^"]*)" and wait for a response$`, tc.iSendARequestToAndWaitForAResponse)
			sc.When(`^I respond again with the same correlation id$`, tc.iRespondAgainWithTheSameCorrelationID)
			sc.Then(`^subscriber "([^"]*)" received (\d+) messages$`, tc.subscriberReceivedMessages)
			sc.Then(`^the delivery order is "([^"]*)"$`, tc.theDeliveryOrderIs)
			sc.Then(`^the response callback was invoked exactly (\d+) times$`, tc.theResponseCallbackWasInvokedExactlyTimes)
			sc.Then(`^the pending request is no longer pending$`, tc.thePendingRequestIsNoLongerPending)
			sc.Then(`^the response counter is (\d+)$`, tc.theResponseCounterIs)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"bus.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run bus feature tests")
	}
}
