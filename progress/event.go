package progress

// NewEvent flattens a State into an Event. Rates and ETAs that are
// undefined, or ETAs without a max, are left nil.
func NewEvent(s *State) Event {
	e := Event{
		Timestamp:  s.Now(),
		Count:      s.Count(),
		CountDelta: s.CountDelta(),
		TimeTotal:  s.TimeTotal().Seconds(),
		TimeDelta:  s.TimeDelta().Seconds(),
	}
	if s.Reason() != 0 {
		e.Reason = s.Reason().String()
	}
	if max, ok := s.Max(); ok {
		e.Max = max
		e.Percent = float64(s.Count()) / float64(max) * 100.0
	}
	if rate, ok := s.ShortRate(); ok {
		e.ShortRate = &rate
	}
	if rate, ok := s.LongRate(); ok {
		e.LongRate = &rate
	}
	if eta, ok, err := s.ShortETA(); err == nil && ok {
		secs := eta.Seconds()
		e.ShortETA = &secs
	}
	if eta, ok, err := s.LongETA(); err == nil && ok {
		secs := eta.Seconds()
		e.LongETA = &secs
	}
	return e
}

// ReportTo returns an Action that sends each State, as an Event, to every
// reporter in order.
func ReportTo(reporters ...Reporter) Action {
	return ReportNamed("", reporters...)
}

// ReportNamed is ReportTo with Event.Name set to name.
func ReportNamed(name string, reporters ...Reporter) Action {
	return func(s *State) error {
		event := NewEvent(s)
		event.Name = name
		for _, r := range reporters {
			r.Report(event)
		}
		return nil
	}
}
