package progress

import (
	"context"
	"sync"
)

// Progress fans events out from collectors to reporters on background
// goroutines.
//
// A Logger's Action runs inline on the goroutine calling Trigger. When the
// reporters are slow (network sinks, terminals over ssh) that time is taken
// out of the work loop. Progress moves it elsewhere: the Action hands the
// event to a Collector, which never blocks, and Progress delivers it to each
// reporter from that reporter's own worker.
//
// Events flow: Collector -> Progress.collectorChan -> reporter channels -> Reporters.
//
// Example:
//
//	col := collector.New()
//	prog, err := progress.NewProgress(
//	    progress.WithContext(ctx),
//	    progress.WithReporters(reporter.NewTextReporter(os.Stderr)),
//	    progress.WithCollectors(col),
//	)
//	p, err := progress.New(progress.ReportTo(col), progress.WithStep(1000))
//	...
//	prog.Close() // flush what is queued
//
// Cancelling the context stops every goroutine immediately and drops queued
// events. Close stops intake and drains instead.
type Progress struct {
	ctx    context.Context
	cancel context.CancelFunc

	reporters        []Reporter
	reporterChannels []chan Event
	collectors       []Collector
	collectorChan    chan Event

	subscribeMutex sync.Mutex
	subscriptions  map[int]context.CancelFunc
	subscribed     map[int]Collector
	closed         bool

	subscribers sync.WaitGroup
	workers     sync.WaitGroup
	closeOnce   sync.Once
}

var _ ProgressInterface = &Progress{}

// ProgressOption configures a Progress instance during creation.
type ProgressOption func(p *Progress)

// WithContext bounds the lifetime of every goroutine Progress starts.
func WithContext(ctx context.Context) ProgressOption {
	return func(p *Progress) {
		p.ctx = ctx
	}
}

// WithReporters adds reporters. Every reporter receives every event.
func WithReporters(reporters ...Reporter) ProgressOption {
	return func(p *Progress) {
		p.reporters = append(p.reporters, reporters...)
	}
}

// WithCollectors adds collectors to subscribe to at creation.
func WithCollectors(collectors ...Collector) ProgressOption {
	return func(p *Progress) {
		p.collectors = append(p.collectors, collectors...)
	}
}

// NewProgress creates a Progress hub and starts its goroutines.
//
// Without reporters a NoopReporter is used; without a context the hub runs
// until Close.
func NewProgress(opts ...ProgressOption) (*Progress, error) {
	pg := &Progress{
		collectorChan: make(chan Event, 100),
		subscriptions: map[int]context.CancelFunc{},
		subscribed:    map[int]Collector{},
	}
	for _, opt := range opts {
		opt(pg)
	}
	if pg.ctx == nil {
		pg.ctx = context.Background()
	}
	pg.ctx, pg.cancel = context.WithCancel(pg.ctx)

	if len(pg.reporters) == 0 {
		pg.reporters = append(pg.reporters, NewNoopReporter())
	}

	for _, reporter := range pg.reporters {
		reporterChannel := make(chan Event, 100)
		pg.reporterChannels = append(pg.reporterChannels, reporterChannel)
		pg.workers.Add(1)
		go pg.reporterWorker(reporter, reporterChannel)
	}

	pg.workers.Add(1)
	go pg.fanOut()

	for _, collector := range pg.collectors {
		pg.Subscribe(collector)
	}

	return pg, nil
}

// Subscribe starts forwarding events from collector until Unsubscribe,
// Close or context cancellation. Subscribing after Close is a no-op.
func (p *Progress) Subscribe(collector Collector) {
	p.subscribeMutex.Lock()
	defer p.subscribeMutex.Unlock()
	if p.closed {
		return
	}
	if _, ok := p.subscriptions[collector.ID()]; ok {
		return
	}
	subscribeContext, subscribeCancel := context.WithCancel(p.ctx)
	p.subscriptions[collector.ID()] = subscribeCancel
	p.subscribed[collector.ID()] = collector

	p.subscribers.Add(1)
	go func() {
		defer p.subscribers.Done()
		for {
			select {
			case event := <-collector.CollectChannel():
				// Once taken off the collector the event is delivered,
				// even if the subscription is cancelled meanwhile.
				select {
				case p.collectorChan <- event:
				case <-p.ctx.Done():
					return
				}
			case <-subscribeContext.Done():
				return
			}
		}
	}()
}

// Unsubscribe stops forwarding events from collector. Events still buffered
// in the collector stay there.
func (p *Progress) Unsubscribe(collector Collector) {
	p.subscribeMutex.Lock()
	subscribeCancel, ok := p.subscriptions[collector.ID()]
	delete(p.subscriptions, collector.ID())
	delete(p.subscribed, collector.ID())
	p.subscribeMutex.Unlock()
	if ok {
		subscribeCancel()
	}
}

// Close stops accepting events, delivers everything already queued in
// subscribed collectors to the reporters, and waits for the reporters to
// finish. It is safe to call more than once.
func (p *Progress) Close() {
	p.closeOnce.Do(func() {
		p.subscribeMutex.Lock()
		p.closed = true
		pending := make([]Collector, 0, len(p.subscribed))
		for id, collector := range p.subscribed {
			pending = append(pending, collector)
			p.subscriptions[id]()
		}
		p.subscribeMutex.Unlock()

		p.subscribers.Wait()
		for _, collector := range pending {
			p.drain(collector)
		}
		close(p.collectorChan)
		p.workers.Wait()
		p.cancel()
	})
}

func (p *Progress) drain(collector Collector) {
	for {
		select {
		case event := <-collector.CollectChannel():
			select {
			case p.collectorChan <- event:
			case <-p.ctx.Done():
				return
			}
		default:
			return
		}
	}
}

// fanOut copies each collected event to every reporter channel, and closes
// them once the collector channel is closed.
func (p *Progress) fanOut() {
	defer p.workers.Done()
	for {
		select {
		case event, ok := <-p.collectorChan:
			if !ok {
				for _, ch := range p.reporterChannels {
					close(ch)
				}
				return
			}
			for _, ch := range p.reporterChannels {
				select {
				case ch <- event:
				case <-p.ctx.Done():
					return
				}
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// reporterWorker forwards events to a single reporter so that a slow
// reporter only delays itself.
func (p *Progress) reporterWorker(reporter Reporter, events chan Event) {
	defer p.workers.Done()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			reporter.Report(event)
		case <-p.ctx.Done():
			return
		}
	}
}
